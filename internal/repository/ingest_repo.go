package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

// Schema creates the tables read by SnapshotRepository.
const Schema = `
CREATE TABLE IF NOT EXISTS inventory_items (
	id BIGSERIAL PRIMARY KEY,
	warehouse_id BIGINT NOT NULL DEFAULT 0,
	sku TEXT NOT NULL,
	name TEXT,
	current_stock INTEGER NOT NULL DEFAULT 0,
	low_stock_threshold INTEGER,
	unit_price NUMERIC(14,2),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (warehouse_id, sku)
);

CREATE TABLE IF NOT EXISTS inventory_transactions (
	id BIGSERIAL PRIMARY KEY,
	warehouse_id BIGINT NOT NULL DEFAULT 0,
	sku TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	quantity INTEGER NOT NULL,
	transaction_type TEXT NOT NULL,
	unit_price NUMERIC(14,2)
);

CREATE INDEX IF NOT EXISTS idx_inventory_transactions_wh_time
	ON inventory_transactions (warehouse_id, occurred_at);
`

// IngestRepository writes snapshot exports into the inventory tables
type IngestRepository struct {
	db *sql.DB
}

func NewIngestRepository(db *sql.DB) *IngestRepository {
	return &IngestRepository{db: db}
}

func (r *IngestRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create inventory schema: %w", err)
	}
	return nil
}

// Import upserts items and appends events for one warehouse in a single transaction.
func (r *IngestRepository) Import(ctx context.Context, warehouseID int64, items []domain.InventoryItem, events []domain.TransactionEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range items {
		if err := upsertItem(ctx, tx, warehouseID, &items[i]); err != nil {
			return err
		}
	}
	for i := range events {
		if err := insertTransaction(ctx, tx, warehouseID, &events[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func upsertItem(ctx context.Context, tx *sql.Tx, warehouseID int64, item *domain.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (warehouse_id, sku, name, current_stock, low_stock_threshold, unit_price, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (warehouse_id, sku)
		DO UPDATE SET
			name = EXCLUDED.name,
			current_stock = EXCLUDED.current_stock,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			unit_price = EXCLUDED.unit_price,
			updated_at = NOW()
	`
	_, err := tx.ExecContext(ctx, query,
		warehouseID,
		item.SKU,
		item.Name,
		item.CurrentStock,
		item.LowStockThreshold,
		item.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory item %s: %w", item.SKU, err)
	}
	return nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, warehouseID int64, ev *domain.TransactionEvent) error {
	query := `
		INSERT INTO inventory_transactions (warehouse_id, sku, occurred_at, quantity, transaction_type, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var price sql.NullFloat64
	if ev.UnitPrice != nil {
		price = sql.NullFloat64{Float64: *ev.UnitPrice, Valid: true}
	}

	_, err := tx.ExecContext(ctx, query,
		warehouseID,
		ev.SKU,
		ev.Timestamp,
		ev.Quantity,
		string(ev.Kind),
		price,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction for %s: %w", ev.SKU, err)
	}
	return nil
}
