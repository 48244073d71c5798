package service

import (
	"errors"
	"fmt"
)

// Upstream resources
const (
	ResourceItems   = "items"
	ResourceSales   = "sales"
	ResourceSale    = "sale"
	ResourceConfig  = "config"
	ResourceWeather = "weather"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCheckoutInFlight = errors.New("checkout with this idempotency key is already in progress")

	errWeatherDisabled = errors.New("OPENWEATHER_API_KEY is not set")
)

// UpstreamFetchError is a failed call to the content store or forecast API
type UpstreamFetchError struct {
	Resource string
	Err      error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// UnknownItemError is a cart line that references no catalog item
type UnknownItemError struct {
	ItemID string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %q", e.ItemID)
}

// InvalidQuantityError is a cart line with a zero or negative quantity
type InvalidQuantityError struct {
	ItemID   string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for item %q", e.Quantity, e.ItemID)
}

func upstream(resource string, err error) error {
	return &UpstreamFetchError{Resource: resource, Err: err}
}
