package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/report"
	"storefront/internal/weather"
)

type fakeContent struct {
	mu        sync.Mutex
	items     []models.Item
	sales     []models.SaleTransaction
	itemsErr  error
	salesErr  error
	createErr error
	created   []models.SaleDraft
}

func (f *fakeContent) ListItems(context.Context) ([]models.Item, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.items, nil
}

func (f *fakeContent) ListSales(_ context.Context, r report.TimeRange) ([]models.SaleTransaction, error) {
	if f.salesErr != nil {
		return nil, f.salesErr
	}
	out := []models.SaleTransaction{}
	for _, s := range f.sales {
		if r.Contains(s.CreatedAt) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeContent) CreateSale(_ context.Context, draft models.SaleDraft) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, draft)
	return fmt.Sprintf("sale-%d", len(f.created)), nil
}

type fakeGuard struct {
	mu         sync.Mutex
	keys       map[string]string
	reserveErr error
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{keys: map[string]string{}}
}

func (g *fakeGuard) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reserveErr != nil {
		return false, g.reserveErr
	}
	if _, ok := g.keys[key]; ok {
		return false, nil
	}
	g.keys[key] = redisclient.PendingMarker
	return true, nil
}

func (g *fakeGuard) Complete(ctx context.Context, key, saleID string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.keys[key] = saleID
	return nil
}

func (g *fakeGuard) Lookup(_ context.Context, key string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.keys[key]
	return v, ok, nil
}

func (g *fakeGuard) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

type fakePublisher struct {
	events []*models.SaleRecordedEvent
	err    error
}

func (p *fakePublisher) PublishSaleRecorded(_ context.Context, event *models.SaleRecordedEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type fakeLedger struct {
	seen map[string]bool
	err  error
}

func (l *fakeLedger) RecordSaleEvent(_ context.Context, event *models.SaleRecordedEvent) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.seen[event.EventID] {
		return false, nil
	}
	l.seen[event.EventID] = true
	return true, nil
}

type fakeShop struct {
	cfg models.ShopConfig
	err error
}

func (s fakeShop) GetShopConfig(context.Context) (models.ShopConfig, error) {
	return s.cfg, s.err
}

type fakeForecast struct {
	lat, lon float64
	f        *weather.Forecast
	err      error
}

func (f *fakeForecast) Forecast(_ context.Context, lat, lon float64) (*weather.Forecast, error) {
	f.lat, f.lon = lat, lon
	return f.f, f.err
}

type memSaver struct {
	data     []byte
	filename string
	mimeType string
	calls    int
}

func (m *memSaver) Save(data []byte, filename, mimeType string) error {
	m.calls++
	m.data, m.filename, m.mimeType = data, filename, mimeType
	return nil
}

var catalog = []models.Item{
	{ID: "coffee", Title: "Coffee", Price: 300},
	{ID: "tea", Title: "Tea", Price: 250},
}

func sale(id string, at time.Time, lines ...models.SaleLineItem) models.SaleTransaction {
	return models.SaleTransaction{ID: id, CreatedAt: at, LineItems: lines}
}

func line(title string, qty int) models.SaleLineItem {
	return models.SaleLineItem{ItemTitle: title, Quantity: qty}
}
