package store

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/report"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type saleLineRow struct {
	SaleID    string `db:"sale_id"`
	Position  int    `db:"position"`
	ItemID    string `db:"item_id"`
	ItemTitle string `db:"item_title"`
	Quantity  int    `db:"quantity"`
}

// ListSales retrieves the sales created inside r with their line items,
// newest first and lines in cart order.
func (s *Store) ListSales(ctx context.Context, r report.TimeRange) ([]models.SaleTransaction, error) {
	sales := []models.SaleTransaction{}
	err := s.db.SelectContext(ctx, &sales,
		"SELECT id, created_at, total_price FROM sales WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC",
		r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]string, len(sales))
	byID := make(map[string]int, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
		byID[sale.ID] = i
		sales[i].CreatedAt = sale.CreatedAt.UTC()
		sales[i].LineItems = []models.SaleLineItem{}
	}

	query, args, err := sqlx.In(
		"SELECT sale_id, position, item_id, item_title, quantity FROM sale_line_items WHERE sale_id IN (?) ORDER BY sale_id, position",
		ids)
	if err != nil {
		return nil, err
	}

	var rows []saleLineRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list sale line items: %w", err)
	}

	for _, row := range rows {
		i := byID[row.SaleID]
		sales[i].LineItems = append(sales[i].LineItems, models.SaleLineItem{
			ItemID:    row.ItemID,
			ItemTitle: row.ItemTitle,
			Quantity:  row.Quantity,
		})
	}
	return sales, nil
}

// CreateSale records a checkout directly in the ledger
func (s *Store) CreateSale(ctx context.Context, draft models.SaleDraft) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO sales (id, created_at, total_price) VALUES ($1, NOW(), $2)",
		id, draft.TotalPrice); err != nil {
		return "", fmt.Errorf("failed to insert sale: %w", err)
	}

	if err := insertLines(ctx, tx, id, draft.LineItems); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// RecordSaleEvent projects a sale event into the ledger once. It returns
// false when the event was already applied.
func (s *Store) RecordSaleEvent(ctx context.Context, event *models.SaleRecordedEvent) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		event.EventID, event.EventType)
	if err != nil {
		return false, fmt.Errorf("failed to mark event processed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	lines := make([]models.SaleLineItem, 0, len(event.Items))
	for _, it := range event.Items {
		if _, err := tx.ExecContext(ctx, upsertItemQuery, it.ItemID, it.Title, it.UnitPrice); err != nil {
			return false, fmt.Errorf("failed to upsert item %s: %w", it.ItemID, err)
		}
		lines = append(lines, models.SaleLineItem{ItemID: it.ItemID, ItemTitle: it.Title, Quantity: it.Quantity})
	}

	res, err = tx.ExecContext(ctx,
		"INSERT INTO sales (id, created_at, total_price) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING",
		event.SaleID, event.CreatedAt.UTC(), event.TotalPrice)
	if err != nil {
		return false, fmt.Errorf("failed to insert sale: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if err := insertLines(ctx, tx, event.SaleID, lines); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func insertLines(ctx context.Context, tx *sqlx.Tx, saleID string, lines []models.SaleLineItem) error {
	for i, l := range lines {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO sale_line_items (sale_id, position, item_id, item_title, quantity) VALUES ($1, $2, $3, $4, $5)",
			saleID, i, l.ItemID, l.ItemTitle, l.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert line %d of sale %s: %w", i, saleID, err)
		}
	}
	return nil
}
