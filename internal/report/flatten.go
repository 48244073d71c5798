package report

import (
	"sort"
	"time"

	"storefront/internal/models"
)

// RecordTimeLayout is the wall-clock format of FlatSaleRecord.CreatedAt
const RecordTimeLayout = "2006/01/02 15:04:05"

// FlattenSales emits one record per line item, transactions in given order
// and lines in given order. The timestamp is the transaction's, rendered in loc.
func FlattenSales(sales []models.SaleTransaction, prices PriceBook, loc *time.Location) []models.FlatSaleRecord {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]models.FlatSaleRecord, 0, models.LineItemCount(sales))
	for _, sale := range sales {
		createdAt := sale.CreatedAt.In(loc).Format(RecordTimeLayout)
		for _, line := range sale.LineItems {
			price := prices[line.ItemTitle]
			out = append(out, models.FlatSaleRecord{
				Title:     line.ItemTitle,
				Price:     price,
				Count:     line.Quantity,
				Total:     price * int64(line.Quantity),
				CreatedAt: createdAt,
			})
		}
	}
	return out
}

// SortByCreatedAtDesc stable-sorts records newest first. Unparsable
// timestamps sort last.
func SortByCreatedAtDesc(records []models.FlatSaleRecord) {
	parsed := make(map[string]time.Time, len(records))
	for _, r := range records {
		if _, ok := parsed[r.CreatedAt]; ok {
			continue
		}
		t, err := time.Parse(RecordTimeLayout, r.CreatedAt)
		if err != nil {
			t = time.Time{}
		}
		parsed[r.CreatedAt] = t
	}
	sort.SliceStable(records, func(i, j int) bool {
		return parsed[records[i].CreatedAt].After(parsed[records[j].CreatedAt])
	})
}

// RecordFields returns the export columns of a flat record in header order
func RecordFields(r models.FlatSaleRecord) Record {
	return Record{
		{Name: "title", Value: r.Title},
		{Name: "price", Value: r.Price},
		{Name: "count", Value: r.Count},
		{Name: "total", Value: r.Total},
		{Name: "createdAt", Value: r.CreatedAt},
	}
}

// FlatRecords converts flat sale records into exportable records
func FlatRecords(records []models.FlatSaleRecord) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, RecordFields(r))
	}
	return out
}
