package service

import (
	"testing"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoPayload() MemoPayload {
	permit := true
	return MemoPayload{
		MemoNo:        strPtr("PSE/2024/001"),
		GoodsType:     strPtr("Spare parts"),
		SpecialPermit: &permit,
		EtdShipment:   strPtr("2024-07-01T00:00:00Z"),
		OrderBy:       &entity.Party{CompanyName: "PT Order", Attention: "Rina"},
		DeliveryTo:    &entity.Party{ID: "c-deliver"},
		ManualItems: []entity.ManualItem{
			{PartNo: "P-1", PartName: "Bracket", Qty: 10},
		},
	}
}

func TestWorkflow_SaveDraftKeepsStatus(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedShipment(t, db, "s-1", entity.ShipmentStatusInProcess)

	p := memoPayload()
	memo, err := svc.Workflow.SaveDraft(ctx, "s-1", &p)
	require.NoError(t, err)
	assert.Equal(t, entity.MemoStatusDraft, memo.Status)

	s, err := svc.Shipment.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusInProcess, s.Status)
	assert.Nil(t, s.OrderByID)
	assert.Zero(t, countRows(t, db, &entity.Company{}))
}

func TestWorkflow_SaveAsInProcess(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedShipment(t, db, "s-1", entity.ShipmentStatusDraft, testutil.Item("P-1", "Bracket", 4))

	p := memoPayload()
	memo, err := svc.Workflow.SaveAsInProcess(ctx, "s-1", &p)
	require.NoError(t, err)
	assert.Equal(t, entity.MemoStatusDraft, memo.Status)

	s, err := svc.Shipment.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusInProcess, s.Status)

	_, err = svc.Workflow.SaveAsInProcess(ctx, "missing", &p)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWorkflow_Publish(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedShipment(t, db, "s-1", entity.ShipmentStatusInProcess, testutil.Item("P-1", "Bracket", 10))
	testutil.SeedCompany(t, db, "c-deliver", "Consignee Co")

	req := &PublishRequest{MemoPayload: memoPayload()}
	memo, err := svc.Workflow.Publish(ctx, "s-1", req)
	require.NoError(t, err)
	assert.Equal(t, entity.MemoStatusPublished, memo.Status)
	require.NotNil(t, memo.ManualItems)
	require.NotNil(t, memo.ManualItems.OrderBy)
	assert.Equal(t, "PT Order", memo.ManualItems.OrderBy.CompanyName)

	s, err := svc.Shipment.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusInProcess, s.Status, "publish without setShipmentStatus keeps the status")
	require.NotNil(t, s.MemoNo)
	assert.Equal(t, "PSE/2024/001", *s.MemoNo)
	require.NotNil(t, s.SpecialPermit)
	assert.True(t, *s.SpecialPermit)
	require.NotNil(t, s.EtdShipment)

	require.NotNil(t, s.OrderBy)
	assert.Equal(t, "PT Order", s.OrderBy.Name)
	assert.Equal(t, "Rina", s.OrderBy.ContactPerson)
	require.NotNil(t, s.DeliverTo)
	assert.Equal(t, "Consignee Co", s.DeliverTo.Name)

	// items are left alone by publish
	require.Len(t, s.Items, 1)
	assert.Equal(t, 10.0, s.Items[0].Quantity)
}

func TestWorkflow_PublishSetsStatusWhenAsked(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedShipment(t, db, "s-1", entity.ShipmentStatusDraft)

	req := &PublishRequest{MemoPayload: MemoPayload{MemoNo: strPtr("M-1")}, SetShipmentStatus: strPtr(entity.ShipmentStatusApproved)}
	_, err := svc.Workflow.Publish(ctx, "s-1", req)
	require.NoError(t, err)

	s, err := svc.Shipment.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusApproved, s.Status)
	assert.Nil(t, s.OrderByID)

	bad := &PublishRequest{SetShipmentStatus: strPtr("DONE")}
	_, err = svc.Workflow.Publish(ctx, "s-1", bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWorkflow_PublishRollsBackOnFailure(t *testing.T) {
	db, svc := newTestServices(t)

	req := &PublishRequest{MemoPayload: memoPayload()}
	_, err := svc.Workflow.Publish(ctx, "missing", req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, countRows(t, db, &entity.Company{}), "company created by the failed publish is rolled back")
	assert.Zero(t, countRows(t, db, &entity.Memo{}))
}

func TestWorkflow_PublishInvalidDateRollsBack(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedShipment(t, db, "s-1", entity.ShipmentStatusDraft)

	p := memoPayload()
	p.TpDate = strPtr("31st of never")
	_, err := svc.Workflow.Publish(ctx, "s-1", &PublishRequest{MemoPayload: p})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, countRows(t, db, &entity.Company{}))

	s, err := svc.Shipment.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, s.MemoNo)
}

func TestWorkflow_FinalSave(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedShipment(t, db, "s-1", entity.ShipmentStatusDraft)

	_, err := svc.Workflow.FinalSave(ctx, "s-1", &FinalSaveRequest{StatusAfterSave: entity.ShipmentStatusApproved})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Workflow.FinalSave(ctx, "s-1", &FinalSaveRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	memo, err := svc.Workflow.FinalSave(ctx, "s-1", &FinalSaveRequest{
		MemoPayload:     memoPayload(),
		StatusAfterSave: entity.ShipmentStatusInProcess,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MemoStatusDraft, memo.Status)

	s, err := svc.Shipment.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusInProcess, s.Status)
	require.NotNil(t, s.OrderByID)
	require.NotNil(t, s.DeliverToID)
	assert.Equal(t, "c-deliver", *s.DeliverToID)
	require.NotNil(t, s.MemoNo)
	assert.Equal(t, "PSE/2024/001", *s.MemoNo)

	listed, err := svc.Memo.ListPublishedOrInProgress(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "s-1", listed[0].ID)
}

func TestWorkflow_ApprovedShipmentIsLocked(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedShipment(t, db, "s-1", entity.ShipmentStatusApproved)

	assertLocked := func(t *testing.T, err error) {
		t.Helper()
		assert.ErrorIs(t, err, ErrConflict)
		s, err := svc.Shipment.Get(ctx, "s-1")
		require.NoError(t, err)
		assert.Equal(t, entity.ShipmentStatusApproved, s.Status)
		assert.Nil(t, s.MemoNo)
		assert.Nil(t, s.OrderByID)
		assert.Zero(t, countRows(t, db, &entity.Memo{}))
		assert.Zero(t, countRows(t, db, &entity.Company{}))
	}

	t.Run("save as in-process", func(t *testing.T) {
		p := memoPayload()
		_, err := svc.Workflow.SaveAsInProcess(ctx, "s-1", &p)
		assertLocked(t, err)
	})

	t.Run("publish", func(t *testing.T) {
		_, err := svc.Workflow.Publish(ctx, "s-1", &PublishRequest{
			MemoPayload:       memoPayload(),
			SetShipmentStatus: strPtr(entity.ShipmentStatusDraft),
		})
		assertLocked(t, err)
	})

	t.Run("final save", func(t *testing.T) {
		_, err := svc.Workflow.FinalSave(ctx, "s-1", &FinalSaveRequest{
			MemoPayload:     memoPayload(),
			StatusAfterSave: entity.ShipmentStatusDraft,
		})
		assertLocked(t, err)
	})
}

func TestWorkflow_Reconcile(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedShipment(t, db, "s-1", entity.ShipmentStatusDraft,
		testutil.Item("P-1", "Bracket", 10),
		testutil.Item("P-2", "Cover", 2),
	)

	result, err := svc.Workflow.Reconcile(ctx, "s-1", nil)
	require.NoError(t, err)
	assert.False(t, result.IsMatch)
	assert.Len(t, result.Rows, 2)

	_, err = svc.Memo.UpsertDraft(ctx, "s-1", &MemoPayload{ManualItems: []entity.ManualItem{
		{PartNo: "p-1", PartName: "bracket", Qty: 10},
		{PartNo: "P-2", PartName: "Cover", Qty: 2},
	}})
	require.NoError(t, err)

	result, err = svc.Workflow.Reconcile(ctx, "s-1", &ReconcileRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsMatch)

	result, err = svc.Workflow.Reconcile(ctx, "s-1", &ReconcileRequest{ManualItems: []entity.ManualItem{
		{PartNo: "P-1", PartName: "Bracket", Qty: 9},
	}})
	require.NoError(t, err)
	assert.False(t, result.IsMatch)
	first, ok := result.FirstMismatch()
	require.True(t, ok)
	assert.Equal(t, "p-1|bracket", first.Key)

	_, err = svc.Workflow.Reconcile(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
