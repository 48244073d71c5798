package weather

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/util"

	"github.com/go-resty/resty/v2"
)

const oneCallPath = "/onecall"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Forecast is the subset of the one-call response the dashboard renders
type Forecast struct {
	Hourly []Hour `json:"hourly"`
}

type Hour struct {
	DT       int64       `json:"dt"`
	Temp     float64     `json:"temp"`
	Humidity float64     `json:"humidity"`
	Pop      float64     `json:"pop"`
	Weather  []Condition `json:"weather"`
}

type Condition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Client fetches hourly forecasts from OpenWeather
type Client struct {
	cli *resty.Client
}

func NewClient(c Config) *Client {
	cli := resty.New()
	cli.SetBaseURL(c.BaseURL)
	cli.SetQueryParam("appid", c.APIKey)
	cli.SetTimeout(c.Timeout)

	return &Client{cli: cli}
}

// Forecast returns the hourly forecast around lat/lon
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	ctx, span := util.StartSpan(ctx, "weather.Client.Forecast")
	defer span.End()

	var out Forecast
	resp, err := c.cli.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":     strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":     strconv.FormatFloat(lon, 'f', -1, 64),
			"units":   "metric",
			"lang":    "ja",
			"exclude": "alerts,minutely,daily",
		}).
		SetResult(&out).
		Get(oneCallPath)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	if resp.IsError() {
		err := fmt.Errorf("weather API returned status %d", resp.StatusCode())
		util.RecordError(span, err)
		return nil, err
	}

	return &out, nil
}
