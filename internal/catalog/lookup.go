package catalog

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

// Lookup answers existence questions about catalog entities owned by the
// product and store services. Finders return nil when nothing matches.
type Lookup interface {
	FindProducts(ctx context.Context, tenantID string, productIDs []string) (map[string]model.Product, error)
	FindLocation(ctx context.Context, tenantID, locationID string) (*model.Location, error)
	FindDefaultLocation(ctx context.Context, tenantID string) (*model.Location, error)
	FindCustomer(ctx context.Context, tenantID, customerID string) (*model.Customer, error)
}
