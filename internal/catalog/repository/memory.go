package repository

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

// MemoryRepository is a catalog seeded by hand, used by tests and local runs.
type MemoryRepository struct {
	mu        sync.RWMutex
	products  map[string]model.Product
	locations map[string]model.Location
	customers map[string]model.Customer
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products:  map[string]model.Product{},
		locations: map[string]model.Location{},
		customers: map[string]model.Customer{},
	}
}

func (r *MemoryRepository) AddProduct(p model.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

func (r *MemoryRepository) AddLocation(l model.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID] = l
}

func (r *MemoryRepository) AddCustomer(c model.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
}

func (r *MemoryRepository) FindProducts(ctx context.Context, tenantID string, productIDs []string) (map[string]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]model.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := r.products[id]; ok && p.TenantID == tenantID {
			found[id] = p
		}
	}
	return found, nil
}

func (r *MemoryRepository) FindLocation(ctx context.Context, tenantID, locationID string) (*model.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if l, ok := r.locations[locationID]; ok && l.TenantID == tenantID {
		return &l, nil
	}
	return nil, nil
}

func (r *MemoryRepository) FindDefaultLocation(ctx context.Context, tenantID string) (*model.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.locations {
		if l.TenantID == tenantID && l.IsDefault && l.IsActive {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) FindCustomer(ctx context.Context, tenantID, customerID string) (*model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.customers[customerID]; ok && c.TenantID == tenantID {
		return &c, nil
	}
	return nil, nil
}
