package worker

import (
	"context"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"
)

// MessageSource is a Kafka consumer the worker drains
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// SaleProjector applies a sale event
type SaleProjector interface {
	HandleSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error
}

// LedgerWorker projects sale events from Kafka into the ledger
type LedgerWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
}

// NewLedgerWorker creates a new ledger worker
func NewLedgerWorker(consumer MessageSource, projector SaleProjector) *LedgerWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnSaleRecorded(projector.HandleSaleRecorded)

	return &LedgerWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start consumes until ctx is cancelled
func (w *LedgerWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting ledger worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *LedgerWorker) Stop() error {
	util.GetLogger().Info("Stopping ledger worker")
	return w.consumer.Close()
}
