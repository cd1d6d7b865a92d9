// Package memstore is an in-memory twin of the postgres schema. Units of work
// run against a private copy of the state that replaces the committed state
// only when the unit succeeds.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type StockKey struct {
	ProductID  string
	LocationID string
}

type State struct {
	Stock     map[StockKey]model.StockRecord
	Movements []model.StockMovement
	Orders    map[string]model.Order
	Events    []model.OrderStatusEvent
	Payments  []model.Payment
	Sequences map[string]int64
	eventSeq  int64
}

func newState() *State {
	return &State{
		Stock:     map[StockKey]model.StockRecord{},
		Orders:    map[string]model.Order{},
		Sequences: map[string]int64{},
	}
}

func (s *State) clone() *State {
	c := &State{
		Stock:     make(map[StockKey]model.StockRecord, len(s.Stock)),
		Movements: append([]model.StockMovement(nil), s.Movements...),
		Orders:    make(map[string]model.Order, len(s.Orders)),
		Events:    append([]model.OrderStatusEvent(nil), s.Events...),
		Payments:  append([]model.Payment(nil), s.Payments...),
		Sequences: make(map[string]int64, len(s.Sequences)),
		eventSeq:  s.eventSeq,
	}
	for k, v := range s.Stock {
		c.Stock[k] = v
	}
	for k, v := range s.Orders {
		v.Items = append([]model.OrderItem(nil), v.Items...)
		c.Orders[k] = v
	}
	for k, v := range s.Sequences {
		c.Sequences[k] = v
	}
	return c
}

// NextEventSeq hands out the ordering key of status events.
func (s *State) NextEventSeq() int64 {
	s.eventSeq++
	return s.eventSeq
}

type txKey struct{}

// Store serializes units of work with a single lock, which gives the same
// outcome as SERIALIZABLE isolation.
type Store struct {
	mu    sync.Mutex
	state *State
}

func New() *Store {
	return &Store{state: newState()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*State); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrTransientConflict, err)
	}

	draft := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, draft)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrTransientConflict, err)
	}
	s.state = draft
	return nil
}

// Do runs fn against the state visible to ctx: the unit's draft inside
// WithinTx, the committed state otherwise. Writes made outside a unit apply
// immediately.
func (s *Store) Do(ctx context.Context, fn func(st *State) error) error {
	if st, ok := ctx.Value(txKey{}).(*State); ok {
		return fn(st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}
