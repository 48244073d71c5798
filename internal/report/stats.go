package report

import "storefront/internal/models"

// Totals is the quantity and revenue accumulated for one item
type Totals struct {
	TotalCount int
	TotalPrice int64
}

// CalculateItemStats scans every line of every sale for an exact title match.
// Revenue uses the catalog price, the sales only carry title and quantity.
func CalculateItemStats(sales []models.SaleTransaction, title string, price int64) Totals {
	var t Totals
	for _, sale := range sales {
		for _, line := range sale.LineItems {
			if line.ItemTitle != title {
				continue
			}
			t.TotalCount += line.Quantity
			t.TotalPrice += int64(line.Quantity) * price
		}
	}
	return t
}

// SalesIndex maps item title to the total quantity sold
type SalesIndex map[string]int

// IndexSales accumulates quantities per title in one pass over all lines
func IndexSales(sales []models.SaleTransaction) SalesIndex {
	idx := make(SalesIndex)
	for _, sale := range sales {
		for _, line := range sale.LineItems {
			idx[line.ItemTitle] += line.Quantity
		}
	}
	return idx
}

// Stats returns the totals for an item; missing titles yield zeros
func (idx SalesIndex) Stats(title string, price int64) Totals {
	count := idx[title]
	return Totals{
		TotalCount: count,
		TotalPrice: int64(count) * price,
	}
}
