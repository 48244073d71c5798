package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/redisclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newCheckoutService(t *testing.T, content ContentStore, guard IdempotencyGuard, pub SalePublisher) *CheckoutService {
	s := NewCheckoutService(content, guard, pub, 10*time.Minute)
	s.logger = zaptest.NewLogger(t)
	s.now = func() time.Time { return time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC) }
	return s
}

func TestParseCheckoutForm(t *testing.T) {
	req := ParseCheckoutForm(map[string]string{
		"coffee":     "2",
		"tea":        "0",
		"cake":       "abc",
		"cookie":     "-1",
		"muffin":     " 3 ",
		"totalPrice": "850",
	})

	assert.Equal(t, map[string]int{"coffee": 2, "muffin": 3}, req.Quantities)
	assert.Equal(t, int64(850), req.ClientTotal)
}

func TestBuildDraft(t *testing.T) {
	draft, err := BuildDraft(catalog, map[string]int{"tea": 1, "coffee": 2})

	require.NoError(t, err)
	assert.Equal(t, []models.SaleLineItem{
		{ItemID: "coffee", ItemTitle: "Coffee", Quantity: 2},
		{ItemID: "tea", ItemTitle: "Tea", Quantity: 1},
	}, draft.LineItems)
	assert.Equal(t, int64(850), draft.TotalPrice)
}

func TestBuildDraft_UnknownItem(t *testing.T) {
	_, err := BuildDraft(catalog, map[string]int{"coffee": 1, "scone": 1})

	var unknown *UnknownItemError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "scone", unknown.ItemID)
}

func TestBuildDraft_NonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -5} {
		_, err := BuildDraft(catalog, map[string]int{"coffee": 1, "tea": qty})

		var invalid *InvalidQuantityError
		require.True(t, errors.As(err, &invalid), qty)
		assert.Equal(t, "tea", invalid.ItemID)
		assert.Equal(t, qty, invalid.Quantity)
	}
}

func TestCheckout(t *testing.T) {
	content := &fakeContent{items: catalog}
	pub := &fakePublisher{}
	s := newCheckoutService(t, content, nil, pub)

	res, err := s.Checkout(context.Background(), &CheckoutRequest{
		Quantities:  map[string]int{"coffee": 2, "tea": 1},
		ClientTotal: 999,
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "sale-1", res.ID)
	assert.Equal(t, "2024-03-10T03:00:00.000Z", res.Date)
	assert.Equal(t, int64(850), res.TotalPrice, "total is recomputed from catalog prices")

	require.Len(t, content.created, 1)
	assert.Equal(t, int64(850), content.created[0].TotalPrice)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, models.EventTypeSaleRecorded, event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "sale-1", event.SaleID)
	assert.Equal(t, []models.SaleItemData{
		{ItemID: "coffee", Title: "Coffee", UnitPrice: 300, Quantity: 2},
		{ItemID: "tea", Title: "Tea", UnitPrice: 250, Quantity: 1},
	}, event.Items)
}

func TestCheckout_EmptyCart(t *testing.T) {
	content := &fakeContent{items: catalog}
	s := newCheckoutService(t, content, nil, nil)

	_, err := s.Checkout(context.Background(), ParseCheckoutForm(map[string]string{"coffee": "0", "totalPrice": "0"}))

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, content.created)
}

func TestCheckout_UnknownItemReleasesKey(t *testing.T) {
	guard := newFakeGuard()
	s := newCheckoutService(t, &fakeContent{items: catalog}, guard, nil)

	_, err := s.Checkout(context.Background(), &CheckoutRequest{
		Quantities:     map[string]int{"scone": 1},
		IdempotencyKey: "k1",
	})

	var unknown *UnknownItemError
	assert.True(t, errors.As(err, &unknown))
	assert.NotContains(t, guard.keys, "k1")
}

func TestCheckout_NegativeQuantityRejectedBeforeWrite(t *testing.T) {
	guard := newFakeGuard()
	content := &fakeContent{items: catalog}
	pub := &fakePublisher{}
	s := newCheckoutService(t, content, guard, pub)

	_, err := s.Checkout(context.Background(), &CheckoutRequest{
		Quantities:     map[string]int{"coffee": -5, "tea": 0},
		IdempotencyKey: "k1",
	})

	var invalid *InvalidQuantityError
	require.True(t, errors.As(err, &invalid))
	assert.Empty(t, content.created)
	assert.Empty(t, pub.events)
	assert.NotContains(t, guard.keys, "k1")
}

func TestCheckout_CancelledRequestStillSettlesKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	guard := newFakeGuard()
	s := newCheckoutService(t, &fakeContent{items: catalog}, guard, nil)
	res, err := s.Checkout(ctx, &CheckoutRequest{
		Quantities:     map[string]int{"coffee": 1},
		IdempotencyKey: "k1",
	})
	require.NoError(t, err)
	assert.Equal(t, res.ID, guard.keys["k1"])

	guard = newFakeGuard()
	s = newCheckoutService(t, &fakeContent{items: catalog, createErr: errors.New("500")}, guard, nil)
	_, err = s.Checkout(ctx, &CheckoutRequest{
		Quantities:     map[string]int{"coffee": 1},
		IdempotencyKey: "k2",
	})
	require.Error(t, err)
	assert.NotContains(t, guard.keys, "k2")
}

func TestCheckout_DuplicateReturnsOriginalSale(t *testing.T) {
	content := &fakeContent{items: catalog}
	pub := &fakePublisher{}
	s := newCheckoutService(t, content, newFakeGuard(), pub)
	req := &CheckoutRequest{Quantities: map[string]int{"coffee": 1}, IdempotencyKey: "k1"}

	first, err := s.Checkout(context.Background(), req)
	require.NoError(t, err)

	second, err := s.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, content.created, 1)
	assert.Len(t, pub.events, 1)
}

func TestCheckout_InFlight(t *testing.T) {
	guard := newFakeGuard()
	guard.keys["k1"] = redisclient.PendingMarker
	content := &fakeContent{items: catalog}
	s := newCheckoutService(t, content, guard, nil)

	_, err := s.Checkout(context.Background(), &CheckoutRequest{
		Quantities:     map[string]int{"coffee": 1},
		IdempotencyKey: "k1",
	})

	assert.ErrorIs(t, err, ErrCheckoutInFlight)
	assert.Empty(t, content.created)
}

func TestCheckout_GuardUnavailable(t *testing.T) {
	guard := newFakeGuard()
	guard.reserveErr = errors.New("connection refused")
	content := &fakeContent{items: catalog}
	s := newCheckoutService(t, content, guard, nil)

	res, err := s.Checkout(context.Background(), &CheckoutRequest{
		Quantities:     map[string]int{"coffee": 1},
		IdempotencyKey: "k1",
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, content.created, 1)
}

func TestCheckout_CreateFailsReleasesKey(t *testing.T) {
	guard := newFakeGuard()
	content := &fakeContent{items: catalog, createErr: errors.New("500")}
	s := newCheckoutService(t, content, guard, nil)

	_, err := s.Checkout(context.Background(), &CheckoutRequest{
		Quantities:     map[string]int{"coffee": 1},
		IdempotencyKey: "k1",
	})

	var fetchErr *UpstreamFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, ResourceSale, fetchErr.Resource)
	assert.NotContains(t, guard.keys, "k1")
}

func TestCheckout_PublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	s := newCheckoutService(t, &fakeContent{items: catalog}, nil, pub)

	res, err := s.Checkout(context.Background(), &CheckoutRequest{Quantities: map[string]int{"tea": 2}})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(500), res.TotalPrice)
}

func TestCatalog_UpstreamError(t *testing.T) {
	s := newCheckoutService(t, &fakeContent{itemsErr: errors.New("boom")}, nil, nil)

	_, err := s.Catalog(context.Background())

	var fetchErr *UpstreamFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, ResourceItems, fetchErr.Resource)
}
