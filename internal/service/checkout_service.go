package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/report"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TotalPriceField is the form field carrying the client's cart total
const TotalPriceField = "totalPrice"

// CheckoutService records sales submitted from the register
type CheckoutService struct {
	content        ContentStore
	guard          IdempotencyGuard
	eventPublisher SalePublisher
	idempotencyTTL time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service. guard and publisher
// may be nil, which disables duplicate detection and sale events.
func NewCheckoutService(
	content ContentStore,
	guard IdempotencyGuard,
	eventPublisher SalePublisher,
	idempotencyTTL time.Duration,
) *CheckoutService {
	return &CheckoutService{
		content:        content,
		guard:          guard,
		eventPublisher: eventPublisher,
		idempotencyTTL: idempotencyTTL,
		now:            time.Now,
		logger:         util.GetLogger(),
	}
}

// CheckoutRequest is a cart: item id to quantity
type CheckoutRequest struct {
	Quantities     map[string]int `json:"quantities"`
	ClientTotal    int64          `json:"total_price"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
}

// CheckoutResult is returned to the register after a checkout
type CheckoutResult struct {
	Success    bool   `json:"success"`
	ID         string `json:"id"`
	Date       string `json:"date"`
	TotalPrice int64  `json:"total_price"`
	Duplicate  bool   `json:"duplicate,omitempty"`
}

// ParseCheckoutForm turns register form fields into a request. Every field
// except totalPrice is an item id with its quantity; zero, negative and
// non-numeric quantities are dropped.
func ParseCheckoutForm(form map[string]string) *CheckoutRequest {
	req := &CheckoutRequest{Quantities: make(map[string]int, len(form))}
	for key, value := range form {
		if key == TotalPriceField {
			total, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err == nil {
				req.ClientTotal = total
			}
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			continue
		}
		req.Quantities[key] = n
	}
	return req
}

// BuildDraft validates a cart against the catalog and prices it. Every
// quantity must be positive. Lines come out in catalog order.
func BuildDraft(catalog []models.Item, quantities map[string]int) (models.SaleDraft, error) {
	if len(quantities) == 0 {
		return models.SaleDraft{}, ErrEmptyCart
	}

	known := make(map[string]struct{}, len(catalog))
	for _, item := range catalog {
		known[item.ID] = struct{}{}
	}
	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return models.SaleDraft{}, &UnknownItemError{ItemID: id}
		}
		if qty := quantities[id]; qty <= 0 {
			return models.SaleDraft{}, &InvalidQuantityError{ItemID: id, Quantity: qty}
		}
	}

	draft := models.SaleDraft{LineItems: make([]models.SaleLineItem, 0, len(quantities))}
	for _, item := range catalog {
		qty, ok := quantities[item.ID]
		if !ok {
			continue
		}
		draft.LineItems = append(draft.LineItems, models.SaleLineItem{
			ItemID:    item.ID,
			ItemTitle: item.Title,
			Quantity:  qty,
		})
		draft.TotalPrice += item.Price * int64(qty)
	}
	return draft, nil
}

// Catalog returns the items offered at the register
func (s *CheckoutService) Catalog(ctx context.Context) ([]models.Item, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Catalog")
	defer span.End()

	items, err := s.content.ListItems(ctx)
	if err != nil {
		util.RecordError(span, err)
		util.UpstreamFetchErrorsTotal.WithLabelValues(ResourceItems).Inc()
		return nil, upstream(ResourceItems, err)
	}
	return items, nil
}

// Checkout records a sale. A replayed idempotency key returns the sale
// created by the first submission, or ErrCheckoutInFlight while that
// submission is still running.
func (s *CheckoutService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout",
		attribute.Int("lines", len(req.Quantities)))
	defer span.End()

	if len(req.Quantities) == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	guarded := false
	if req.IdempotencyKey != "" && s.guard != nil {
		result, reserved, err := s.reserve(ctx, req.IdempotencyKey)
		if err != nil || result != nil {
			return result, err
		}
		guarded = reserved
	}

	// The key must be settled even when the client has gone away.
	guardCtx := context.WithoutCancel(ctx)
	release := func() {
		if !guarded {
			return
		}
		if err := s.guard.Release(guardCtx, req.IdempotencyKey); err != nil {
			s.logger.Warn("Failed to release idempotency key",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err))
		}
	}

	catalog, err := s.content.ListItems(ctx)
	if err != nil {
		release()
		util.RecordError(span, err)
		util.CheckoutFailedTotal.WithLabelValues("upstream").Inc()
		util.UpstreamFetchErrorsTotal.WithLabelValues(ResourceItems).Inc()
		return nil, upstream(ResourceItems, err)
	}

	draft, err := BuildDraft(catalog, req.Quantities)
	if err != nil {
		release()
		util.CheckoutFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	if req.ClientTotal != draft.TotalPrice {
		s.logger.Warn("Client total does not match catalog prices, using catalog total",
			zap.Int64("client_total", req.ClientTotal),
			zap.Int64("total", draft.TotalPrice))
	}

	saleID, err := s.content.CreateSale(ctx, draft)
	if err != nil {
		release()
		util.RecordError(span, err)
		util.CheckoutFailedTotal.WithLabelValues("upstream").Inc()
		return nil, upstream(ResourceSale, err)
	}

	now := s.now()
	util.SalesRecordedTotal.Inc()
	util.SalesRevenueTotal.Add(float64(draft.TotalPrice))
	s.logger.Info("Sale recorded",
		zap.String("sale_id", saleID),
		zap.Int("lines", len(draft.LineItems)),
		zap.Int64("total", draft.TotalPrice))

	if guarded {
		if err := s.guard.Complete(guardCtx, req.IdempotencyKey, saleID, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to store idempotency result",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err))
		}
	}

	s.publishSaleRecorded(ctx, saleID, now, catalog, draft)

	return &CheckoutResult{
		Success:    true,
		ID:         saleID,
		Date:       report.FormatISO(now),
		TotalPrice: draft.TotalPrice,
	}, nil
}

// reserve claims the idempotency key. A non-nil result means the key
// belongs to a completed sale. When Redis is unreachable the checkout
// proceeds unguarded.
func (s *CheckoutService) reserve(ctx context.Context, key string) (*CheckoutResult, bool, error) {
	reserved, err := s.guard.Reserve(ctx, key, s.idempotencyTTL)
	if err != nil {
		s.logger.Warn("Idempotency guard unavailable, continuing without it",
			zap.String("idempotency_key", key),
			zap.Error(err))
		return nil, false, nil
	}
	if reserved {
		return nil, true, nil
	}

	util.CheckoutDuplicatesTotal.Inc()
	value, found, err := s.guard.Lookup(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if !found || value == redisclient.PendingMarker {
		return nil, false, ErrCheckoutInFlight
	}

	s.logger.Info("Duplicate checkout request detected",
		zap.String("idempotency_key", key),
		zap.String("sale_id", value))
	return &CheckoutResult{
		Success:   true,
		ID:        value,
		Date:      report.FormatISO(s.now()),
		Duplicate: true,
	}, false, nil
}

func (s *CheckoutService) publishSaleRecorded(ctx context.Context, saleID string, at time.Time, catalog []models.Item, draft models.SaleDraft) {
	if s.eventPublisher == nil {
		return
	}

	prices := make(map[string]int64, len(catalog))
	for _, item := range catalog {
		prices[item.ID] = item.Price
	}
	items := make([]models.SaleItemData, 0, len(draft.LineItems))
	for _, line := range draft.LineItems {
		items = append(items, models.SaleItemData{
			ItemID:    line.ItemID,
			Title:     line.ItemTitle,
			UnitPrice: prices[line.ItemID],
			Quantity:  line.Quantity,
		})
	}

	event := &models.SaleRecordedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleRecorded,
			Timestamp: at,
		},
		SaleID:     saleID,
		CreatedAt:  at.UTC(),
		TotalPrice: draft.TotalPrice,
		Items:      items,
	}

	if err := s.eventPublisher.PublishSaleRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleRecorded event",
			zap.String("sale_id", saleID),
			zap.Error(err))
	}
}
