package repository

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-ledger-service/internal/catalog"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ catalog.Lookup = (*MemoryRepository)(nil)
	_ catalog.Lookup = (*PGRepository)(nil)
)

func TestMemoryRepositoryScopesByTenant(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	r.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "p1"}, TenantID: "t1", IsActive: true})
	r.AddLocation(model.Location{BaseModel: model.BaseModel{ID: "l1"}, TenantID: "t1", IsDefault: true, IsActive: true})
	r.AddCustomer(model.Customer{BaseModel: model.BaseModel{ID: "c1"}, TenantID: "t1"})

	found, err := r.FindProducts(ctx, "t1", []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = r.FindProducts(ctx, "t2", []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, found)

	loc, err := r.FindDefaultLocation(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "l1", loc.ID)

	loc, err = r.FindLocation(ctx, "t2", "l1")
	require.NoError(t, err)
	assert.Nil(t, loc)

	c, err := r.FindCustomer(ctx, "t2", "c1")
	require.NoError(t, err)
	assert.Nil(t, c)
}
