package service

import (
	"testing"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyService_ListOrderedByName(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedCompany(t, db, "c-2", "Zeta Corp")
	testutil.SeedCompany(t, db, "c-1", "Alpha Ltd")
	require.NoError(t, svc.Company.Deactivate(ctx, "c-2"))
	testutil.SeedCompany(t, db, "c-3", "Mid Co")

	active, err := svc.Company.List(ctx, true, "")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Alpha Ltd", active[0].Name)
	assert.Equal(t, "Mid Co", active[1].Name)

	all, err := svc.Company.List(ctx, false, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Zeta Corp", all[2].Name)
	assert.False(t, all[2].IsActive)

	found, err := svc.Company.List(ctx, false, "alpha")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "c-1", found[0].ID)
}

func TestCompanyService_Create(t *testing.T) {
	_, svc := newTestServices(t)

	_, err := svc.Company.Create(ctx, &CreateCompanyRequest{Name: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	c, err := svc.Company.Create(ctx, &CreateCompanyRequest{Name: " PT Maju ", Country: "Indonesia"})
	require.NoError(t, err)
	assert.Equal(t, "PT Maju", c.Name)
	assert.True(t, c.IsActive)
	assert.NotEmpty(t, c.ID)
}

func TestCompanyService_Update(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedCompany(t, db, "c-1", "Alpha Ltd")

	_, err := svc.Company.Update(ctx, "missing", &UpdateCompanyRequest{Name: strPtr("X")})
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := svc.Company.Update(ctx, "c-1", &UpdateCompanyRequest{Phone: strPtr("021-555")})
	require.NoError(t, err)
	assert.Equal(t, "Alpha Ltd", c.Name)
	assert.Equal(t, "021-555", c.Phone)
	assert.Equal(t, "Indonesia", c.Country)

	_, err = svc.Company.Update(ctx, "c-1", &UpdateCompanyRequest{Name: strPtr("")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompanyService_Deactivate(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedCompany(t, db, "c-1", "Alpha Ltd")

	require.NoError(t, svc.Company.Deactivate(ctx, "c-1"))
	require.NoError(t, svc.Company.Deactivate(ctx, "c-1"))

	c, err := svc.Company.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.False(t, c.IsActive)

	assert.ErrorIs(t, svc.Company.Deactivate(ctx, "missing"), ErrNotFound)
}

func TestCompanyService_EnsureExists(t *testing.T) {
	db, svc := newTestServices(t)

	id, err := svc.Company.EnsureExists(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = svc.Company.EnsureExists(ctx, &entity.Party{ID: "c123"})
	require.NoError(t, err)
	assert.Equal(t, "c123", id)
	assert.Zero(t, countRows(t, db, &entity.Company{}))

	id, err = svc.Company.EnsureExists(ctx, &entity.Party{Address: "no name"})
	require.NoError(t, err)
	assert.Empty(t, id)

	party := &entity.Party{CompanyName: "Acme", Attention: "Budi", Country: "Japan"}
	first, err := svc.Company.EnsureExists(ctx, party)
	require.NoError(t, err)
	second, err := svc.Company.EnsureExists(ctx, party)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.EqualValues(t, 2, countRows(t, db, &entity.Company{}))

	c, err := svc.Company.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "Budi", c.ContactPerson)
	assert.True(t, c.IsActive)
}
