package service

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/report"
	"storefront/internal/util"
	"storefront/internal/weather"

	"go.uber.org/zap"
)

// StaticShopConfig serves a fixed shop profile, used when no CMS is configured
type StaticShopConfig struct {
	Config models.ShopConfig
}

func (s StaticShopConfig) GetShopConfig(context.Context) (models.ShopConfig, error) {
	return s.Config, nil
}

// DefaultShopConfig is the profile of a shop in central Tokyo
func DefaultShopConfig() models.ShopConfig {
	return models.ShopConfig{
		Location:  models.DefaultLocation,
		Latitude:  models.DefaultLatitude,
		Longitude: models.DefaultLongitude,
	}
}

// WeatherService serves the shop profile and its hourly forecast
type WeatherService struct {
	shop        ShopConfigSource
	forecast    ForecastSource
	offsetHours int
	hours       int
	logger      *zap.Logger
}

// NewWeatherService creates a weather service. forecast may be nil when no
// API key is configured; Load then fails with an UpstreamFetchError.
func NewWeatherService(shop ShopConfigSource, forecast ForecastSource, offsetHours int) *WeatherService {
	return &WeatherService{
		shop:        shop,
		forecast:    forecast,
		offsetHours: offsetHours,
		hours:       weather.DefaultHours,
		logger:      util.GetLogger(),
	}
}

// WeatherReport is the payload of the weather widget
type WeatherReport struct {
	Location  string         `json:"location"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Series    weather.Series `json:"series"`
}

// ShopConfig returns the shop profile, falling back to the defaults when the
// content store cannot be reached.
func (s *WeatherService) ShopConfig(ctx context.Context) models.ShopConfig {
	cfg, err := s.shop.GetShopConfig(ctx)
	if err != nil {
		util.UpstreamFetchErrorsTotal.WithLabelValues(ResourceConfig).Inc()
		s.logger.Warn("Failed to load shop config, using defaults", zap.Error(err))
		return DefaultShopConfig()
	}
	return cfg
}

// Load fetches the forecast at the shop's position
func (s *WeatherService) Load(ctx context.Context) (*WeatherReport, error) {
	ctx, span := util.StartSpan(ctx, "WeatherService.Load")
	defer span.End()

	cfg := s.ShopConfig(ctx)
	if s.forecast == nil {
		return nil, upstream(ResourceWeather, errWeatherDisabled)
	}

	f, err := s.forecast.Forecast(ctx, cfg.Latitude, cfg.Longitude)
	if err != nil {
		util.RecordError(span, err)
		util.UpstreamFetchErrorsTotal.WithLabelValues(ResourceWeather).Inc()
		s.logger.Error("Failed to fetch forecast",
			zap.Float64("latitude", cfg.Latitude),
			zap.Float64("longitude", cfg.Longitude),
			zap.Error(err))
		return nil, upstream(ResourceWeather, err)
	}

	return &WeatherReport{
		Location:  cfg.Location,
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
		Series:    weather.HourlySeries(f, report.Zone(s.offsetHours), s.hours),
	}, nil
}
