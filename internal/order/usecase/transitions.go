package usecase

import (
	"fmt"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

// Position of each status on the forward path. DELIVERED and COMPLETED are
// alternative ends of the same path.
var statusRank = map[model.OrderStatus]int{
	model.OrderPending:    0,
	model.OrderConfirmed:  1,
	model.OrderProcessing: 2,
	model.OrderReady:      3,
	model.OrderDelivered:  4,
	model.OrderCompleted:  4,
}

// checkTransition decides whether an order in from may move to to.
// A cancelled order never moves again. In strict mode statuses may skip
// ahead but never go back, and DELIVERED and COMPLETED are final.
func checkTransition(strict bool, from, to model.OrderStatus) error {
	if from == model.OrderCancelled {
		if to == model.OrderCancelled {
			return apperror.ErrAlreadyCancelled
		}
		return fmt.Errorf("%w: order is cancelled", apperror.ErrInvalidTransition)
	}
	if !strict {
		return nil
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s is final", apperror.ErrInvalidTransition, from)
	}
	if to == model.OrderCancelled {
		return nil
	}
	if statusRank[to] < statusRank[from] {
		return fmt.Errorf("%w: %s -> %s", apperror.ErrInvalidTransition, from, to)
	}
	return nil
}
