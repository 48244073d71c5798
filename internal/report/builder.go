package report

import (
	"sort"

	"storefront/internal/models"
)

// Names of the transaction sets the dashboard compares
const (
	SetCurrent  = "current"
	SetPrevious = "previous"
)

// BuildItemReport returns one ItemStat per catalog item, in catalog order.
// Items without sales are kept with zero totals.
func BuildItemReport(catalog []models.Item, sales []models.SaleTransaction) []models.ItemStat {
	idx := IndexSales(sales)
	out := make([]models.ItemStat, 0, len(catalog))
	for _, item := range catalog {
		t := idx.Stats(item.Title, item.Price)
		out = append(out, models.ItemStat{
			Title:      item.Title,
			Price:      item.Price,
			TotalCount: t.TotalCount,
			TotalPrice: t.TotalPrice,
		})
	}
	return out
}

// BuildReports builds an item report for each named transaction set
func BuildReports(catalog []models.Item, sets map[string][]models.SaleTransaction) map[string][]models.ItemStat {
	reports := make(map[string][]models.ItemStat, len(sets))
	for name, sales := range sets {
		reports[name] = BuildItemReport(catalog, sales)
	}
	return reports
}

// SortByRevenueDesc returns a copy of stats ordered by descending TotalPrice.
// Ties keep catalog order.
func SortByRevenueDesc(stats []models.ItemStat) []models.ItemStat {
	out := make([]models.ItemStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalPrice > out[j].TotalPrice
	})
	return out
}

// GrandTotal sums revenue over a report
func GrandTotal(stats []models.ItemStat) int64 {
	var total int64
	for _, s := range stats {
		total += s.TotalPrice
	}
	return total
}

// PriceBook maps item title to catalog price
type PriceBook map[string]int64

// NewPriceBook indexes catalog prices by title
func NewPriceBook(catalog []models.Item) PriceBook {
	pb := make(PriceBook, len(catalog))
	for _, item := range catalog {
		pb[item.Title] = item.Price
	}
	return pb
}
