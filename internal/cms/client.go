package cms

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/models"
	"storefront/internal/report"
	"storefront/internal/util"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	endpointItems  = "/items"
	endpointSale   = "/sale"
	endpointConfig = "/config"

	apiKeyHeader = "X-MICROCMS-API-KEY"

	// content field the sales range filter applies to
	createdAtField = "createdAt"
)

// Config holds the content API connection settings
type Config struct {
	BaseURL   string
	APIKey    string
	ListLimit int
	Timeout   time.Duration
}

// Client talks to the headless content API holding the catalog, the sales
// and the shop profile.
type Client struct {
	cli    *resty.Client
	limit  int
	logger *zap.Logger
}

// NewClient creates a content API client
func NewClient(c Config) *Client {
	cli := resty.New()
	cli.SetBaseURL(c.BaseURL)
	cli.SetHeader(apiKeyHeader, c.APIKey)
	cli.SetTimeout(c.Timeout)

	limit := c.ListLimit
	if limit <= 0 {
		limit = 9999
	}

	return &Client{
		cli:    cli,
		limit:  limit,
		logger: util.GetLogger(),
	}
}

// ListItems returns the catalog ordered by descending price
func (c *Client) ListItems(ctx context.Context) ([]models.Item, error) {
	ctx, span := util.StartSpan(ctx, "cms.Client.ListItems")
	defer span.End()

	var out listResponse[itemContent]
	resp, err := c.cli.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(c.limit),
			"orders": "-price",
		}).
		SetResult(&out).
		Get(endpointItems)
	if err := checkResponse(resp, err, endpointItems); err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	return toItems(out.Contents, c.logger), nil
}

// ListSales returns the sales created inside r
func (c *Client) ListSales(ctx context.Context, r report.TimeRange) ([]models.SaleTransaction, error) {
	ctx, span := util.StartSpan(ctx, "cms.Client.ListSales")
	defer span.End()

	var out listResponse[saleContent]
	resp, err := c.cli.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":   strconv.Itoa(c.limit),
			"filters": report.FormatRangeFilter(createdAtField, r),
		}).
		SetResult(&out).
		Get(endpointSale)
	if err := checkResponse(resp, err, endpointSale); err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	if out.TotalCount > len(out.Contents) {
		c.logger.Warn("Sales list truncated by list limit",
			zap.Int("total_count", out.TotalCount),
			zap.Int("limit", c.limit))
	}

	return toSales(out.Contents, c.logger), nil
}

// CreateSale writes a sale and returns its content id
func (c *Client) CreateSale(ctx context.Context, draft models.SaleDraft) (string, error) {
	ctx, span := util.StartSpan(ctx, "cms.Client.CreateSale")
	defer span.End()

	var out createResponse
	resp, err := c.cli.R().
		SetContext(ctx).
		SetBody(toSaleInput(draft)).
		SetResult(&out).
		Post(endpointSale)
	if err := checkResponse(resp, err, endpointSale); err != nil {
		util.RecordError(span, err)
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("content API accepted sale without returning an id")
	}

	return out.ID, nil
}

// GetShopConfig returns the shop profile, defaulting the position to Tokyo
func (c *Client) GetShopConfig(ctx context.Context) (models.ShopConfig, error) {
	ctx, span := util.StartSpan(ctx, "cms.Client.GetShopConfig")
	defer span.End()

	var out configContent
	resp, err := c.cli.R().
		SetContext(ctx).
		SetResult(&out).
		Get(endpointConfig)
	if err := checkResponse(resp, err, endpointConfig); err != nil {
		util.RecordError(span, err)
		return models.ShopConfig{}, err
	}

	return toShopConfig(out), nil
}

func checkResponse(resp *resty.Response, err error, endpoint string) error {
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	if resp.IsError() {
		return fmt.Errorf("content API %s returned status %d", endpoint, resp.StatusCode())
	}
	return nil
}
