package models

import "time"

// Item represents a catalog entry sold at the register
type Item struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
	Price int64  `db:"price" json:"price"`
}

// SaleLineItem is one line of a submitted cart
type SaleLineItem struct {
	ItemID    string `db:"item_id" json:"item_id"`
	ItemTitle string `db:"item_title" json:"item_title"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

// SaleTransaction is one checkout, immutable once recorded
type SaleTransaction struct {
	ID         string         `db:"id" json:"id"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	LineItems  []SaleLineItem `db:"-" json:"line_items"`
	TotalPrice int64          `db:"total_price" json:"total_price"`
}

// LineItemCount returns the number of lines across all transactions
func LineItemCount(sales []SaleTransaction) int {
	n := 0
	for _, s := range sales {
		n += len(s.LineItems)
	}
	return n
}

// ItemStat is the per-item aggregate for one transaction set
type ItemStat struct {
	Title      string `json:"title"`
	Price      int64  `json:"price"`
	TotalCount int    `json:"total_count"`
	TotalPrice int64  `json:"total_price"`
}

// FlatSaleRecord is one line item flattened for history views and export
type FlatSaleRecord struct {
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Count     int    `json:"count"`
	Total     int64  `json:"total"`
	CreatedAt string `json:"createdAt"`
}

// SaleDraft is a validated cart ready to be written to the content store
type SaleDraft struct {
	LineItems  []SaleLineItem
	TotalPrice int64
}

// ShopConfig is the storefront profile kept in the content store
type ShopConfig struct {
	ShopName  string  `json:"shop_name"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Shop defaults when the content store has no position configured
const (
	DefaultLocation  = "東京"
	DefaultLatitude  = 35.6894
	DefaultLongitude = 139.6917
)
