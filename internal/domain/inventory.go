// internal/domain/inventory.go
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultLowStockThreshold is applied when a catalog record carries no threshold.
const DefaultLowStockThreshold = 10

// InventoryItem is a read-only catalog snapshot row for one SKU
type InventoryItem struct {
	ID                string  `json:"id" db:"id"`
	SKU               string  `json:"sku" db:"sku"`
	Name              string  `json:"name" db:"name"`
	CurrentStock      int     `json:"current_stock" db:"current_stock"`
	// LowStockThreshold defaults to DefaultLowStockThreshold only when
	// decoded from JSON or loaded from an export or the database. A literal
	// InventoryItem{} keeps 0, meaning no stock-level warning; the restock
	// calculator substitutes its configured default for negative values only.
	LowStockThreshold int     `json:"low_stock_threshold" db:"low_stock_threshold"`
	UnitPrice         float64 `json:"unit_price" db:"unit_price"`
}

// UnmarshalJSON applies DefaultLowStockThreshold when the field is absent.
func (i *InventoryItem) UnmarshalJSON(data []byte) error {
	type alias InventoryItem
	decoded := alias{LowStockThreshold: DefaultLowStockThreshold}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*i = InventoryItem(decoded)
	return nil
}

// TransactionKind classifies a stock movement
type TransactionKind string

const (
	KindSale       TransactionKind = "sale"
	KindReceipt    TransactionKind = "receipt"
	KindAdjustment TransactionKind = "adjustment"
	KindDamage     TransactionKind = "damage"
)

var transactionKindAliases = map[string]TransactionKind{
	"sale":       KindSale,
	"sales":      KindSale,
	"sold":       KindSale,
	"out":        KindSale,
	"outbound":   KindSale,
	"order":      KindSale,
	"shipment":   KindSale,
	"receipt":    KindReceipt,
	"receive":    KindReceipt,
	"received":   KindReceipt,
	"in":         KindReceipt,
	"inbound":    KindReceipt,
	"purchase":   KindReceipt,
	"restock":    KindReceipt,
	"adjustment": KindAdjustment,
	"adjust":     KindAdjustment,
	"correction": KindAdjustment,
	"count":      KindAdjustment,
	"damage":     KindDamage,
	"damaged":    KindDamage,
	"waste":      KindDamage,
	"loss":       KindDamage,
	"expired":    KindDamage,
	"shrinkage":  KindDamage,
}

// ParseTransactionKind maps a source label onto a TransactionKind (case-insensitive).
func ParseTransactionKind(label string) (TransactionKind, bool) {
	kind, ok := transactionKindAliases[strings.ToLower(strings.TrimSpace(label))]
	return kind, ok
}

// IsOutflowKind reports whether events of this kind deplete stock through demand.
func (k TransactionKind) IsOutflowKind() bool {
	return k == KindSale || k == KindDamage
}

// TransactionEvent is a normalized stock movement. Timestamp is always a UTC
// calendar day; Quantity is negative for outflow and positive for inflow.
type TransactionEvent struct {
	SKU       string          `json:"sku" db:"sku"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Kind      TransactionKind `json:"kind" db:"kind"`
	UnitPrice *float64        `json:"unit_price,omitempty" db:"unit_price"`
}

// IsOutflow reports whether the event counts toward consumption
func (e TransactionEvent) IsOutflow() bool {
	return e.Kind.IsOutflowKind() && e.Quantity < 0
}

// RawTransaction is a transaction-like record as delivered by a source
// integration. Field names and value types vary per source.
type RawTransaction map[string]interface{}
