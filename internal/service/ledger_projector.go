package service

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// LedgerProjector applies sale events to the Postgres ledger
type LedgerProjector struct {
	ledger LedgerRecorder
	logger *zap.Logger
}

// NewLedgerProjector creates a new ledger projector
func NewLedgerProjector(ledger LedgerRecorder) *LedgerProjector {
	return &LedgerProjector{
		ledger: ledger,
		logger: util.GetLogger(),
	}
}

// HandleSaleRecorded writes the sale unless its event was already applied.
// An error leaves the message uncommitted for redelivery.
func (p *LedgerProjector) HandleSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error {
	ctx, span := util.StartSpan(ctx, "LedgerProjector.HandleSaleRecorded",
		attribute.String("sale_id", event.SaleID),
		attribute.String("event_id", event.EventID))
	defer span.End()

	if reason := invalidSaleEvent(event); reason != "" {
		util.LedgerEventsProjectedTotal.WithLabelValues("invalid").Inc()
		p.logger.Warn("Dropping invalid sale event",
			zap.String("event_id", event.EventID),
			zap.String("sale_id", event.SaleID),
			zap.String("reason", reason))
		return nil
	}

	applied, err := p.ledger.RecordSaleEvent(ctx, event)
	if err != nil {
		util.RecordError(span, err)
		util.LedgerEventsProjectedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to project sale %s: %w", event.SaleID, err)
	}

	if !applied {
		util.LedgerEventsProjectedTotal.WithLabelValues("duplicate").Inc()
		p.logger.Info("Event already processed, skipping", zap.String("event_id", event.EventID))
		return nil
	}

	util.LedgerEventsProjectedTotal.WithLabelValues("applied").Inc()
	p.logger.Info("Sale projected into ledger",
		zap.String("sale_id", event.SaleID),
		zap.Int("lines", len(event.Items)))
	return nil
}

// invalidSaleEvent names why the ledger could never accept event, or
// returns "". Such events are dropped so they do not block the partition.
func invalidSaleEvent(event *models.SaleRecordedEvent) string {
	if event.EventID == "" || event.SaleID == "" {
		return "missing ids"
	}
	if event.TotalPrice < 0 {
		return "negative total"
	}
	for _, item := range event.Items {
		if item.ItemID == "" {
			return "line without item id"
		}
		if item.Quantity < 0 || item.UnitPrice < 0 {
			return "negative line"
		}
	}
	return ""
}
