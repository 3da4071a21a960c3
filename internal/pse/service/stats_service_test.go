package service

import (
	"testing"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_Get(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedShipment(t, db, "s-1", entity.ShipmentStatusDraft)
	testutil.SeedShipment(t, db, "s-2", entity.ShipmentStatusApproved)
	testutil.SeedShipment(t, db, "s-3", entity.ShipmentStatusInProcess)
	testutil.SeedShipment(t, db, "s-4", entity.ShipmentStatusInProcess)
	testutil.SeedCompany(t, db, "c-1", "Acme")
	testutil.SeedUser(t, db, "u-1", "operator", "secret123", entity.RoleViewer)

	stats, err := svc.Stats.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalShipments)
	assert.EqualValues(t, 1, stats.Approved)
	assert.EqualValues(t, 2, stats.InProcess)
	assert.EqualValues(t, 1, stats.Draft)
	assert.EqualValues(t, 1, stats.TotalCompanies)
	assert.EqualValues(t, 1, stats.TotalUsers)
}

func TestNotificationService(t *testing.T) {
	_, svc := newTestServices(t)

	mine, err := svc.Notification.Create(ctx, &CreateNotificationRequest{Title: "Upload: a.xlsx", UserID: "u-1"})
	require.NoError(t, err)
	_, err = svc.Notification.Create(ctx, &CreateNotificationRequest{Title: "Broadcast"})
	require.NoError(t, err)
	_, err = svc.Notification.Create(ctx, &CreateNotificationRequest{Title: "Other", UserID: "u-2"})
	require.NoError(t, err)

	list, err := svc.Notification.Recent(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.Notification.MarkRead(ctx, mine.ID))
	assert.ErrorIs(t, svc.Notification.MarkRead(ctx, "missing"), ErrNotFound)

	n, err := svc.Notification.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
