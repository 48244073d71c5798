package weather

import (
	"fmt"
	"math"
	"time"
)

// DefaultHours is how many forecast points the dashboard shows
const DefaultHours = 8

const iconBaseURL = "https://openweathermap.org/img/wn"

// Icon is the weather symbol for one hour
type Icon struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Series is the chart payload: every slice has the same length
type Series struct {
	Labels              []string `json:"labels"`
	Temperature         []int    `json:"temperature"`
	Humidity            []int    `json:"humidity"`
	PrecipitationChance []int    `json:"precipitation_chance"`
	Icons               []Icon   `json:"icons"`
}

// HourLabel renders a unix timestamp as the local hour, e.g. "15時"
func HourLabel(unix int64, loc *time.Location) string {
	return fmt.Sprintf("%d時", time.Unix(unix, 0).In(loc).Hour())
}

// HourlySeries shapes the first n hours of a forecast for the line chart
func HourlySeries(f *Forecast, loc *time.Location, n int) Series {
	var hours []Hour
	if f != nil {
		hours = f.Hourly
	}
	if n < len(hours) {
		hours = hours[:n]
	}

	s := Series{
		Labels:              make([]string, 0, len(hours)),
		Temperature:         make([]int, 0, len(hours)),
		Humidity:            make([]int, 0, len(hours)),
		PrecipitationChance: make([]int, 0, len(hours)),
		Icons:               make([]Icon, 0, len(hours)),
	}
	for _, h := range hours {
		s.Labels = append(s.Labels, HourLabel(h.DT, loc))
		s.Temperature = append(s.Temperature, int(math.Round(h.Temp)))
		s.Humidity = append(s.Humidity, int(math.Round(h.Humidity)))
		s.PrecipitationChance = append(s.PrecipitationChance, int(math.Round(h.Pop*100)))

		var icon Icon
		if len(h.Weather) > 0 {
			icon = Icon{
				URL:         fmt.Sprintf("%s/%s@2x.png", iconBaseURL, h.Weather[0].Icon),
				Description: h.Weather[0].Description,
			}
		}
		s.Icons = append(s.Icons, icon)
	}
	return s
}
