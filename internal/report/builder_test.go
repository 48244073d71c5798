package report

import (
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sale(id string, at time.Time, lines ...models.SaleLineItem) models.SaleTransaction {
	return models.SaleTransaction{ID: id, CreatedAt: at, LineItems: lines}
}

func line(title string, qty int) models.SaleLineItem {
	return models.SaleLineItem{ItemTitle: title, Quantity: qty}
}

var testCatalog = []models.Item{
	{ID: "coffee", Title: "Coffee", Price: 300},
	{ID: "tea", Title: "Tea", Price: 250},
}

func TestBuildItemReport_Example(t *testing.T) {
	sales := []models.SaleTransaction{
		sale("s1", time.Now(), line("Coffee", 2)),
	}

	got := BuildItemReport(testCatalog, sales)

	assert.Equal(t, []models.ItemStat{
		{Title: "Coffee", Price: 300, TotalCount: 2, TotalPrice: 600},
		{Title: "Tea", Price: 250, TotalCount: 0, TotalPrice: 0},
	}, got)
}

func TestBuildItemReport_EmptySalesKeepsCatalog(t *testing.T) {
	got := BuildItemReport(testCatalog, nil)

	require.Len(t, got, len(testCatalog))
	for _, s := range got {
		assert.Zero(t, s.TotalCount)
		assert.Zero(t, s.TotalPrice)
	}
}

func TestBuildItemReport_MatchesPerItemScan(t *testing.T) {
	sales := []models.SaleTransaction{
		sale("s1", time.Now(), line("Coffee", 1), line("Tea", 3)),
		sale("s2", time.Now(), line("coffee", 5), line("Coffee", 4)),
		sale("s3", time.Now()),
		sale("s4", time.Now(), line("Cake", 2), line("Tea", 0)),
	}

	got := BuildItemReport(testCatalog, sales)

	require.Len(t, got, len(testCatalog))
	for i, item := range testCatalog {
		want := CalculateItemStats(sales, item.Title, item.Price)
		assert.Equal(t, want.TotalCount, got[i].TotalCount, item.Title)
		assert.Equal(t, want.TotalPrice, got[i].TotalPrice, item.Title)
		assert.Equal(t, item.Price*int64(got[i].TotalCount), got[i].TotalPrice, item.Title)
	}
	assert.Equal(t, 5, got[0].TotalCount, "title match is case-sensitive")
	assert.Equal(t, 3, got[1].TotalCount)
}

func TestCalculateItemStats_NoMatch(t *testing.T) {
	sales := []models.SaleTransaction{sale("s1", time.Now(), line("Tea", 1))}

	assert.Equal(t, Totals{}, CalculateItemStats(sales, "Coffee", 300))
}

func TestBuildReports(t *testing.T) {
	reports := BuildReports(testCatalog, map[string][]models.SaleTransaction{
		SetCurrent:  {sale("s1", time.Now(), line("Tea", 2))},
		SetPrevious: nil,
	})

	require.Len(t, reports, 2)
	assert.Equal(t, int64(500), reports[SetCurrent][1].TotalPrice)
	assert.Len(t, reports[SetPrevious], 2)
	assert.Zero(t, GrandTotal(reports[SetPrevious]))
}

func TestSortByRevenueDesc_StableAndNonDestructive(t *testing.T) {
	stats := []models.ItemStat{
		{Title: "A", TotalPrice: 100},
		{Title: "B", TotalPrice: 300},
		{Title: "C", TotalPrice: 100},
	}

	sorted := SortByRevenueDesc(stats)

	assert.Equal(t, []string{"B", "A", "C"}, titles(sorted))
	assert.Equal(t, []string{"A", "B", "C"}, titles(stats))
}

func TestNewDonutSeries(t *testing.T) {
	stats := []models.ItemStat{
		{Title: "Coffee", TotalPrice: 600},
		{Title: "Tea", TotalPrice: 0},
	}

	ds := NewDonutSeries(stats)

	assert.Equal(t, []string{"Coffee", "Tea"}, ds.Labels)
	assert.Equal(t, []int64{600, 0}, ds.Series)
	assert.Equal(t, int64(600), ds.Total)
}

func titles(stats []models.ItemStat) []string {
	out := make([]string, 0, len(stats))
	for _, s := range stats {
		out = append(out, s.Title)
	}
	return out
}
