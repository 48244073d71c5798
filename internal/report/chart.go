package report

import "storefront/internal/models"

// DonutSeries is the payload for the sales-by-item donut chart.
// Labels and Series always have the same length and Series sums to Total.
type DonutSeries struct {
	Labels []string `json:"labels"`
	Series []int64  `json:"series"`
	Total  int64    `json:"total"`
}

// NewDonutSeries pairs item titles with their revenue
func NewDonutSeries(stats []models.ItemStat) DonutSeries {
	ds := DonutSeries{
		Labels: make([]string, 0, len(stats)),
		Series: make([]int64, 0, len(stats)),
	}
	for _, s := range stats {
		ds.Labels = append(ds.Labels, s.Title)
		ds.Series = append(ds.Series, s.TotalPrice)
		ds.Total += s.TotalPrice
	}
	return ds
}
