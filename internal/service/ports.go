package service

import (
	"context"
	"time"

	"storefront/internal/models"
	"storefront/internal/report"
	"storefront/internal/weather"
)

// ContentStore is where the catalog and sales live: the headless CMS or
// the Postgres ledger.
type ContentStore interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	ListSales(ctx context.Context, r report.TimeRange) ([]models.SaleTransaction, error)
	CreateSale(ctx context.Context, draft models.SaleDraft) (string, error)
}

type ShopConfigSource interface {
	GetShopConfig(ctx context.Context) (models.ShopConfig, error)
}

// IdempotencyGuard remembers checkout submissions for a while
type IdempotencyGuard interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Complete(ctx context.Context, key, saleID string, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (string, bool, error)
	Release(ctx context.Context, key string) error
}

type SalePublisher interface {
	PublishSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error
}

// LedgerRecorder applies a sale event at most once. It reports false when
// the event was already applied.
type LedgerRecorder interface {
	RecordSaleEvent(ctx context.Context, event *models.SaleRecordedEvent) (bool, error)
}

type ForecastSource interface {
	Forecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error)
}
