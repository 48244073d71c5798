package models

import "time"

// Event types
const (
	EventTypeSaleRecorded = "SALE_RECORDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleRecordedEvent published once the content store accepted a checkout
type SaleRecordedEvent struct {
	BaseEvent
	SaleID     string         `json:"sale_id"`
	CreatedAt  time.Time      `json:"created_at"`
	TotalPrice int64          `json:"total_price"`
	Items      []SaleItemData `json:"items"`
}

// SaleItemData represents a sold line in events, with the catalog price at sale time
type SaleItemData struct {
	ItemID    string `json:"item_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}
