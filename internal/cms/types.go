package cms

import (
	"time"

	"storefront/internal/models"

	"go.uber.org/zap"
)

// listResponse is the envelope of every list endpoint
type listResponse[T any] struct {
	Contents   []T `json:"contents"`
	TotalCount int `json:"totalCount"`
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
}

type itemContent struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	Title     string `json:"title"`
	Price     *int64 `json:"price"`
}

type saleItemContent struct {
	FieldID string       `json:"fieldId"`
	Item    *itemContent `json:"item"`
	Number  *int         `json:"number"`
}

type saleContent struct {
	ID         string            `json:"id"`
	CreatedAt  string            `json:"createdAt"`
	SaleItems  []saleItemContent `json:"saleItems"`
	TotalPrice *int64            `json:"totalPrice"`
}

type configContent struct {
	ShopName string `json:"shopName"`
	Location struct {
		Location string `json:"location"`
	} `json:"location"`
	ShopPosition struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"shopPosition"`
}

// sale creation payload; item holds the referenced item id
type saleItemInput struct {
	FieldID string `json:"fieldId"`
	Item    string `json:"item"`
	Number  int    `json:"number"`
}

type saleInput struct {
	SaleItems  []saleItemInput `json:"saleItems"`
	TotalPrice int64           `json:"totalPrice"`
}

type createResponse struct {
	ID string `json:"id"`
}

const saleItemsFieldID = "items"

func toItems(contents []itemContent, logger *zap.Logger) []models.Item {
	items := make([]models.Item, 0, len(contents))
	for _, c := range contents {
		if c.Title == "" {
			logger.Warn("Dropping item without title", zap.String("item_id", c.ID))
			continue
		}
		var price int64
		if c.Price != nil {
			price = *c.Price
		}
		if price < 0 {
			logger.Warn("Clamping negative item price",
				zap.String("item_id", c.ID),
				zap.Int64("price", price))
			price = 0
		}
		items = append(items, models.Item{ID: c.ID, Title: c.Title, Price: price})
	}
	return items
}

func toSales(contents []saleContent, logger *zap.Logger) []models.SaleTransaction {
	sales := make([]models.SaleTransaction, 0, len(contents))
	for _, c := range contents {
		createdAt, err := time.Parse(time.RFC3339Nano, c.CreatedAt)
		if err != nil {
			logger.Warn("Dropping sale with unparsable createdAt",
				zap.String("sale_id", c.ID),
				zap.String("created_at", c.CreatedAt))
			continue
		}

		lines := make([]models.SaleLineItem, 0, len(c.SaleItems))
		for _, si := range c.SaleItems {
			if si.Item == nil || si.Item.Title == "" {
				logger.Warn("Dropping sale line without item reference", zap.String("sale_id", c.ID))
				continue
			}
			qty := 0
			if si.Number != nil && *si.Number > 0 {
				qty = *si.Number
			}
			lines = append(lines, models.SaleLineItem{
				ItemID:    si.Item.ID,
				ItemTitle: si.Item.Title,
				Quantity:  qty,
			})
		}

		var total int64
		if c.TotalPrice != nil {
			total = *c.TotalPrice
		}
		sales = append(sales, models.SaleTransaction{
			ID:         c.ID,
			CreatedAt:  createdAt.UTC(),
			LineItems:  lines,
			TotalPrice: total,
		})
	}
	return sales
}

func toShopConfig(c configContent) models.ShopConfig {
	cfg := models.ShopConfig{
		ShopName:  c.ShopName,
		Location:  c.Location.Location,
		Latitude:  models.DefaultLatitude,
		Longitude: models.DefaultLongitude,
	}
	if cfg.Location == "" {
		cfg.Location = models.DefaultLocation
	}
	if c.ShopPosition.Latitude != nil && c.ShopPosition.Longitude != nil {
		cfg.Latitude = *c.ShopPosition.Latitude
		cfg.Longitude = *c.ShopPosition.Longitude
	}
	return cfg
}

func toSaleInput(d models.SaleDraft) saleInput {
	in := saleInput{
		SaleItems:  make([]saleItemInput, 0, len(d.LineItems)),
		TotalPrice: d.TotalPrice,
	}
	for _, l := range d.LineItems {
		in.SaleItems = append(in.SaleItems, saleItemInput{
			FieldID: saleItemsFieldID,
			Item:    l.ItemID,
			Number:  l.Quantity,
		})
	}
	return in
}
