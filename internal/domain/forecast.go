// internal/domain/forecast.go
package domain

import (
	"encoding/json"
	"math"
	"time"
)

// DataSufficiencyResult describes whether the transaction history is long enough to forecast
type DataSufficiencyResult struct {
	HasSufficientData bool   `json:"has_sufficient_data"`
	DaysWithData      int    `json:"days_with_data"`
	DaysUntilReady    int    `json:"days_until_ready"`
	Message           string `json:"message"`
}

// RestockUrgency is the three-tier replenishment classification
type RestockUrgency string

const (
	UrgencyCritical RestockUrgency = "critical"
	UrgencyWarning  RestockUrgency = "warning"
	UrgencyNormal   RestockUrgency = "normal"
)

// Rank orders urgencies from most to least severe.
func (u RestockUrgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyWarning:
		return 1
	default:
		return 2
	}
}

// Days is a non-negative day count where +Inf means "never" (no measurable
// depletion). It encodes to JSON null since JSON has no infinity.
type Days float64

// InfiniteDays is the unbounded sentinel for zero-usage items.
var InfiniteDays = Days(math.Inf(1))

func (d Days) IsInfinite() bool {
	return math.IsInf(float64(d), 1)
}

func (d Days) MarshalJSON() ([]byte, error) {
	if d.IsInfinite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(d))
}

func (d *Days) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = InfiniteDays
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = Days(f)
	return nil
}

// Prediction is the per-SKU restock forecast
type Prediction struct {
	ItemID           string         `json:"item_id"`
	SKU              string         `json:"sku"`
	Name             string         `json:"name"`
	CurrentStock     int            `json:"current_stock"`
	DailyUsageRate   float64        `json:"daily_usage_rate"`
	DaysUntilRestock Days           `json:"days_until_restock"`
	RestockUrgency   RestockUrgency `json:"restock_urgency"`
	Confidence       float64        `json:"confidence"`
}

// RankedSalesEntry is one row of the best-seller or slow-mover lists
type RankedSalesEntry struct {
	ID           string  `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	TotalSold    int     `json:"total_sold"`
	TotalRevenue float64 `json:"total_revenue"`
	CurrentStock int     `json:"current_stock"`
}

// Snapshot is a closed input set for one forecast computation.
// AsOf bounds the observation window; nil means the latest event day.
type Snapshot struct {
	Items        []InventoryItem    `json:"items"`
	Transactions []TransactionEvent `json:"transactions"`
	AsOf         *time.Time         `json:"as_of,omitempty"`
}

// ForecastReport bundles every engine output for one snapshot
type ForecastReport struct {
	SnapshotKey         string                `json:"snapshot_key"`
	AsOf                *time.Time            `json:"as_of,omitempty"`
	Sufficiency         DataSufficiencyResult `json:"sufficiency"`
	Predictions         []Prediction          `json:"predictions"`
	BestSellers         []RankedSalesEntry    `json:"best_sellers"`
	SlowMovers          []RankedSalesEntry    `json:"slow_movers"`
	SkippedTransactions int                   `json:"skipped_transactions"`
	DroppedSKUs         []string              `json:"dropped_skus"`
}

// ForecastFilter selects the snapshot a collaborator loads for the engine
type ForecastFilter struct {
	WarehouseID *int64     `json:"warehouse_id"`
	Since       *time.Time `json:"since"`
	AsOf        *time.Time `json:"as_of"`
	TopN        int        `json:"top_n"`
}

// EvaluateRequest is an inline snapshot posted by a caller
type EvaluateRequest struct {
	Items        []InventoryItem  `json:"items"`
	Transactions []RawTransaction `json:"transactions"`
	AsOf         *time.Time       `json:"as_of"`
	TopN         int              `json:"top_n"`
}
