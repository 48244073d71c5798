package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func saleEvent(eventID, saleID string) *models.SaleRecordedEvent {
	return &models.SaleRecordedEvent{
		BaseEvent: models.BaseEvent{EventID: eventID, EventType: models.EventTypeSaleRecorded},
		SaleID:    saleID,
		Items:     []models.SaleItemData{{ItemID: "coffee", Title: "Coffee", UnitPrice: 300, Quantity: 1}},
	}
}

func TestHandleSaleRecorded(t *testing.T) {
	ledger := &fakeLedger{seen: map[string]bool{}}
	p := NewLedgerProjector(ledger)
	p.logger = zaptest.NewLogger(t)

	assert.NoError(t, p.HandleSaleRecorded(context.Background(), saleEvent("e1", "s1")))
	assert.NoError(t, p.HandleSaleRecorded(context.Background(), saleEvent("e1", "s1")))
	assert.True(t, ledger.seen["e1"])
}

func TestHandleSaleRecorded_Error(t *testing.T) {
	p := NewLedgerProjector(&fakeLedger{err: errors.New("deadlock")})
	p.logger = zaptest.NewLogger(t)

	err := p.HandleSaleRecorded(context.Background(), saleEvent("e1", "s1"))

	assert.ErrorContains(t, err, "deadlock")
}

func TestHandleSaleRecorded_MissingIDsDropped(t *testing.T) {
	ledger := &fakeLedger{seen: map[string]bool{}}
	p := NewLedgerProjector(ledger)
	p.logger = zaptest.NewLogger(t)

	assert.NoError(t, p.HandleSaleRecorded(context.Background(), saleEvent("", "s1")))
	assert.Empty(t, ledger.seen)
}

func TestHandleSaleRecorded_NegativeLineDropped(t *testing.T) {
	ledger := &fakeLedger{seen: map[string]bool{}}
	p := NewLedgerProjector(ledger)
	p.logger = zaptest.NewLogger(t)

	event := saleEvent("e2", "s2")
	event.Items[0].Quantity = -5
	event.TotalPrice = -1500

	assert.NoError(t, p.HandleSaleRecorded(context.Background(), event))
	assert.Empty(t, ledger.seen)
}
