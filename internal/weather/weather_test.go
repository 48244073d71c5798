package weather

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/onecall", r.URL.Path)
		assert.Equal(t, "key", q.Get("appid"))
		assert.Equal(t, "35.6894", q.Get("lat"))
		assert.Equal(t, "139.6917", q.Get("lon"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "alerts,minutely,daily", q.Get("exclude"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"hourly":[{"dt":1710054000,"temp":12.6,"humidity":40.4,"pop":0.25,"weather":[{"icon":"01d","description":"晴天"}]}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key", Timeout: 5 * time.Second})

	f, err := c.Forecast(context.Background(), 35.6894, 139.6917)

	require.NoError(t, err)
	require.Len(t, f.Hourly, 1)
	assert.Equal(t, 12.6, f.Hourly[0].Temp)
}

func TestForecast_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})

	_, err := c.Forecast(context.Background(), 0, 0)

	assert.ErrorContains(t, err, "401")
}

func TestHourlySeries(t *testing.T) {
	// 2024-03-10T06:00:00Z is 15時 in JST
	base := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC).Unix()
	f := &Forecast{}
	for i := 0; i < 10; i++ {
		f.Hourly = append(f.Hourly, Hour{
			DT:       base + int64(i)*3600,
			Temp:     10.5,
			Humidity: 55.2,
			Pop:      0.3,
			Weather:  []Condition{{Icon: "02d", Description: "曇り"}},
		})
	}

	s := HourlySeries(f, report.Zone(9), DefaultHours)

	require.Len(t, s.Labels, DefaultHours)
	assert.Len(t, s.Temperature, DefaultHours)
	assert.Len(t, s.Icons, DefaultHours)
	assert.Equal(t, "15時", s.Labels[0])
	assert.Equal(t, "22時", s.Labels[7])
	assert.Equal(t, 11, s.Temperature[0])
	assert.Equal(t, 55, s.Humidity[0])
	assert.Equal(t, 30, s.PrecipitationChance[0])
	assert.Equal(t, "https://openweathermap.org/img/wn/02d@2x.png", s.Icons[0].URL)
}

func TestHourlySeries_ShortOrNil(t *testing.T) {
	s := HourlySeries(nil, time.UTC, DefaultHours)
	assert.Empty(t, s.Labels)

	s = HourlySeries(&Forecast{Hourly: []Hour{{DT: 0}}}, time.UTC, DefaultHours)
	assert.Equal(t, []string{"0時"}, s.Labels)
	assert.Equal(t, Icon{}, s.Icons[0])
}
