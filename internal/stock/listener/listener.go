package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/stock"
	"github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventStockMovementRequested is published by purchasing (goods receipt) and
// stock-count tools.
const EventStockMovementRequested = "StockMovementRequested"

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type StockListener struct {
	consumer MessageReader
	uc       stock.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewStockListener(consumer MessageReader, uc stock.UseCase, logger logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("Starting Stock Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Stock Kafka Listener")
			return
		default:
			msg, err := l.consumer.FetchMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(l.backoff)
				continue
			}
			if !l.handle(ctx, msg) {
				return
			}
			if err := l.consumer.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				// redelivery is harmless, the movements are applied once per reference
				l.logger.Error("Failed to commit kafka message", zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
	}
}

// handle processes msg until it succeeds or fails for good. It returns false
// when ctx ends first, leaving the message uncommitted for redelivery.
func (l *StockListener) handle(ctx context.Context, msg kafka.Message) bool {
	for attempt := 1; ; attempt++ {
		err := l.processMessage(ctx, msg.Value)
		if err == nil || !apperror.Retryable(err) {
			return true
		}
		l.logger.Warn("Retrying stock movement event",
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(l.backoff):
		}
	}
}

type StockMovementEvent struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Payload   StockMovementPayload `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
}

type StockMovementPayload struct {
	TenantID      string                     `json:"tenant_id"`
	LocationID    string                     `json:"location_id"`
	ReferenceType string                     `json:"reference_type"`
	ReferenceID   string                     `json:"reference_id"`
	ActorID       string                     `json:"actor_id"`
	Notes         string                     `json:"notes"`
	Items         []StockMovementItemPayload `json:"items"`
}

type StockMovementItemPayload struct {
	ProductID    string `json:"product_id"`
	MovementType string `json:"movement_type"`
	Quantity     int64  `json:"quantity"`
}

// processMessage applies every item of one event as a single unit, so a
// half-applied goods receipt is never visible. A redelivered event is skipped.
// Only retryable errors are returned.
func (l *StockListener) processMessage(ctx context.Context, value []byte) error {
	var event StockMovementEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return nil
	}

	if event.EventType != EventStockMovementRequested {
		return nil
	}

	l.logger.Info("Processing StockMovementRequested event",
		zap.String("event_id", event.EventID),
		zap.String("reference_id", event.Payload.ReferenceID),
	)

	inputs := make([]dto.AppendMovementInput, 0, len(event.Payload.Items))
	for _, item := range event.Payload.Items {
		inputs = append(inputs, dto.AppendMovementInput{
			TenantID:      event.Payload.TenantID,
			ProductID:     item.ProductID,
			LocationID:    event.Payload.LocationID,
			Type:          model.MovementType(item.MovementType),
			Quantity:      item.Quantity,
			ReferenceType: event.Payload.ReferenceType,
			ReferenceID:   event.Payload.ReferenceID,
			Notes:         event.Payload.Notes,
			ActorID:       event.Payload.ActorID,
		})
	}

	_, applied, err := l.uc.ApplyOnce(ctx, inputs)
	if err != nil {
		if apperror.Retryable(err) {
			return err
		}
		l.logger.Error("Failed to apply stock movements",
			zap.String("event_id", event.EventID),
			zap.String("reference_id", event.Payload.ReferenceID),
			zap.Error(err),
		)
		return nil
	}
	if !applied {
		l.logger.Info("Skipping already applied stock movement event",
			zap.String("event_id", event.EventID),
			zap.String("reference_id", event.Payload.ReferenceID),
		)
	}
	return nil
}
