// Package txn defines the atomic unit of work shared by the stock and order use cases.
package txn

import "context"

// Transactor runs fn as one atomic unit. Every repository call made with the
// ctx passed to fn joins the unit. A nested WithinTx joins the outer unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
