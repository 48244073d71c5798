package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "CONTENT_BACKEND", "MICROCMS_BASE_URL", "CMS_LIST_LIMIT", "REPORT_UTC_OFFSET_HOURS", "KAFKA_BROKERS"} {
		t.Setenv(key, "")
	}
	t.Setenv("MICROCMS_SERVICE_DOMAIN", "shop")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendCMS, cfg.Content.Backend)
	assert.Equal(t, "https://shop.microcms.io/api/v1", cfg.Content.BaseURL)
	assert.Equal(t, 9999, cfg.Content.ListLimit)
	assert.Equal(t, 9, cfg.Report.UTCOffsetHours)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CONTENT_BACKEND", BackendPostgres)
	t.Setenv("REPORT_UTC_OFFSET_HOURS", "-5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CMS_LIST_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, -5, cfg.Report.UTCOffsetHours)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 9999, cfg.Content.ListLimit)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	cfg := &Config{Content: ContentConfig{Backend: "sqlite"}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{
		Content: ContentConfig{Backend: BackendPostgres},
		Database: DatabaseConfig{URL: "postgres://x"},
		Report:   ReportConfig{UTCOffsetHours: 20},
	}
	assert.Error(t, cfg.Validate())
}
