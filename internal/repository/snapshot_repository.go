// internal/repository/snapshot_repository.go
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/repository/postgres"
)

// SnapshotRepository loads the read-only inputs of a forecast run
type SnapshotRepository interface {
	GetInventoryItems(ctx context.Context, filter domain.ForecastFilter) ([]domain.InventoryItem, error)
	GetRawTransactions(ctx context.Context, filter domain.ForecastFilter) ([]domain.RawTransaction, error)
}

type snapshotRepository struct {
	db *postgres.DB
}

func NewSnapshotRepository(db *postgres.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) GetInventoryItems(ctx context.Context, filter domain.ForecastFilter) ([]domain.InventoryItem, error) {
	query := `
        SELECT
            id::text AS id,
            sku,
            COALESCE(name, '') AS name,
            COALESCE(current_stock, 0) AS current_stock,
            COALESCE(low_stock_threshold, $1) AS low_stock_threshold,
            COALESCE(unit_price, 0)::float8 AS unit_price
        FROM inventory_items
        WHERE 1=1
    `

	args := []interface{}{domain.DefaultLowStockThreshold}
	argCounter := 2

	if filter.WarehouseID != nil {
		query += fmt.Sprintf(" AND warehouse_id = $%d", argCounter)
		args = append(args, *filter.WarehouseID)
		argCounter++
	}

	query += " ORDER BY sku, id"

	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var items []domain.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("error getting inventory items: %w", err)
	}

	return items, nil
}

func (r *snapshotRepository) GetRawTransactions(ctx context.Context, filter domain.ForecastFilter) ([]domain.RawTransaction, error) {
	query := `
        SELECT
            sku,
            occurred_at,
            quantity,
            transaction_type,
            unit_price
        FROM inventory_transactions
        WHERE 1=1
    `

	where, args := buildTransactionFilter(filter, 1)
	query += where
	query += " ORDER BY occurred_at, sku, id"

	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying inventory transactions: %w", err)
	}
	defer rows.Close()

	records := make([]domain.RawTransaction, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("error scanning inventory transaction: %w", err)
		}
		records = append(records, toRawTransaction(row))
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory transactions: %w", err)
	}

	return records, nil
}

// buildTransactionFilter returns the AND clauses for a transaction query,
// numbering placeholders from startIndex.
func buildTransactionFilter(filter domain.ForecastFilter, startIndex int) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	idx := startIndex

	if filter.WarehouseID != nil {
		conditions = append(conditions, fmt.Sprintf("warehouse_id = $%d", idx))
		args = append(args, *filter.WarehouseID)
		idx++
	}

	if filter.Since != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", idx))
		args = append(args, startOfDay(*filter.Since))
		idx++
	}

	if filter.AsOf != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at < $%d", idx))
		args = append(args, startOfDay(*filter.AsOf).AddDate(0, 0, 1))
		idx++
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return " AND " + strings.Join(conditions, " AND "), args
}

// toRawTransaction converts driver values into plain Go values. Numeric
// columns come back from lib/pq as []byte.
func toRawTransaction(row map[string]interface{}) domain.RawTransaction {
	rec := make(domain.RawTransaction, len(row))
	for k, v := range row {
		switch t := v.(type) {
		case []byte:
			rec[k] = string(t)
		default:
			rec[k] = t
		}
	}
	return rec
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
