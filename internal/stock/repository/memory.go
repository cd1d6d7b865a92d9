package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/memstore"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
)

type MemoryRepository struct {
	store *memstore.Store
}

func NewMemoryRepository(store *memstore.Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

func (r *MemoryRepository) Get(ctx context.Context, tenantID, productID, locationID string) (*model.StockRecord, error) {
	var out *model.StockRecord
	err := r.store.Do(ctx, func(st *memstore.State) error {
		rec, ok := st.Stock[memstore.StockKey{ProductID: productID, LocationID: locationID}]
		if ok && rec.TenantID == tenantID {
			out = &rec
		}
		return nil
	})
	return out, err
}

func (r *MemoryRepository) BatchGet(ctx context.Context, tenantID string, keys []dto.StockKey) ([]model.StockRecord, error) {
	items := []model.StockRecord{}
	err := r.store.Do(ctx, func(st *memstore.State) error {
		for _, k := range keys {
			rec, ok := st.Stock[memstore.StockKey{ProductID: k.ProductID, LocationID: k.LocationID}]
			if ok && rec.TenantID == tenantID {
				items = append(items, rec)
			}
		}
		return nil
	})
	return items, err
}

func (r *MemoryRepository) GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*model.StockRecord, error) {
	var out model.StockRecord
	err := r.store.Do(ctx, func(st *memstore.State) error {
		key := memstore.StockKey{ProductID: productID, LocationID: locationID}
		rec, ok := st.Stock[key]
		if !ok {
			rec = model.StockRecord{TenantID: tenantID, ProductID: productID, LocationID: locationID}
			st.Stock[key] = rec
		}
		if rec.TenantID != tenantID {
			return fmt.Errorf("%w: %s", apperror.ErrProductNotFound, productID)
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MemoryRepository) UpdateQuantity(ctx context.Context, rec *model.StockRecord) error {
	return r.store.Do(ctx, func(st *memstore.State) error {
		key := memstore.StockKey{ProductID: rec.ProductID, LocationID: rec.LocationID}
		if cur, ok := st.Stock[key]; !ok || cur.TenantID != rec.TenantID {
			return fmt.Errorf("failed to update stock record: %s/%s not found", rec.ProductID, rec.LocationID)
		}
		st.Stock[key] = *rec
		return nil
	})
}

func (r *MemoryRepository) LogMovement(ctx context.Context, m *model.StockMovement) error {
	return r.store.Do(ctx, func(st *memstore.State) error {
		st.Movements = append(st.Movements, *m)
		return nil
	})
}

func (r *MemoryRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var matched []model.StockMovement
	err := r.store.Do(ctx, func(st *memstore.State) error {
		for _, m := range st.Movements {
			if matchMovement(m, f) {
				matched = append(matched, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// newest first, insertion order breaks ties
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start > total {
			start = total
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	if matched == nil {
		matched = []model.StockMovement{}
	}
	return matched, total, nil
}

func matchMovement(m model.StockMovement, f *dto.MovementFilters) bool {
	switch {
	case m.TenantID != f.TenantID:
		return false
	case f.ProductID != "" && m.ProductID != f.ProductID:
		return false
	case f.LocationID != "" && m.LocationID != f.LocationID:
		return false
	case f.MovementType != "" && m.MovementType != f.MovementType:
		return false
	case f.ReferenceType != "" && (m.ReferenceType == nil || *m.ReferenceType != f.ReferenceType):
		return false
	case f.ReferenceID != "" && (m.ReferenceID == nil || *m.ReferenceID != f.ReferenceID):
		return false
	case f.StartDate != nil && m.CreatedAt.Before(*f.StartDate):
		return false
	case f.EndDate != nil && !m.CreatedAt.Before(*f.EndDate):
		return false
	}
	return true
}
