package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

func TestBuildTransactionFilter(t *testing.T) {
	warehouse := int64(3)
	since := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	where, args := buildTransactionFilter(domain.ForecastFilter{}, 1)
	if where != "" || len(args) != 0 {
		t.Errorf("Expected no clauses for empty filter, got %q %v", where, args)
	}

	where, args = buildTransactionFilter(domain.ForecastFilter{WarehouseID: &warehouse, Since: &since, AsOf: &asOf}, 1)
	expected := " AND warehouse_id = $1 AND occurred_at >= $2 AND occurred_at < $3"
	if where != expected {
		t.Errorf("Expected %q, got %q", expected, where)
	}
	if len(args) != 3 {
		t.Fatalf("Expected 3 args, got %d", len(args))
	}
	if args[0] != warehouse {
		t.Errorf("Expected warehouse arg %d, got %v", warehouse, args[0])
	}
	if got := args[1].(time.Time); !got.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected since truncated to day, got %s", got)
	}
	if got := args[2].(time.Time); !got.Equal(time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected as-of bound to be the next day, got %s", got)
	}

	where, _ = buildTransactionFilter(domain.ForecastFilter{Since: &since}, 4)
	if !strings.Contains(where, "$4") {
		t.Errorf("Expected numbering to start at $4, got %q", where)
	}
}

func TestToRawTransaction(t *testing.T) {
	occurred := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := toRawTransaction(map[string]interface{}{
		"sku":              "A100",
		"occurred_at":      occurred,
		"quantity":         int64(-3),
		"transaction_type": "sale",
		"unit_price":       []byte("12.50"),
	})

	if rec["unit_price"] != "12.50" {
		t.Errorf("Expected numeric bytes converted to string, got %#v", rec["unit_price"])
	}
	if rec["occurred_at"] != occurred {
		t.Errorf("Expected timestamp passed through, got %#v", rec["occurred_at"])
	}
}
