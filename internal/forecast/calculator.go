package forecast

import (
	"math"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

// RestockForecast is the calculator output for one item
type RestockForecast struct {
	DaysUntilRestock domain.Days
	Urgency          domain.RestockUrgency
}

// RestockCalculator turns stock on hand and a usage rate into days of cover and an urgency tier
type RestockCalculator struct {
	criticalDays     float64
	warningDays      float64
	defaultThreshold int
}

// NewRestockCalculator creates a new restock calculator
func NewRestockCalculator(cfg Config) *RestockCalculator {
	cfg = cfg.withDefaults()
	return &RestockCalculator{
		criticalDays:     cfg.CriticalDays,
		warningDays:      cfg.WarningDays,
		defaultThreshold: cfg.DefaultLowStockThreshold,
	}
}

// Calculate computes days until restock and the urgency tier for an item
func (rc *RestockCalculator) Calculate(item domain.InventoryItem, dailyUsageRate float64) RestockForecast {
	stock := item.CurrentStock
	if stock < 0 {
		stock = 0
	}

	threshold := item.LowStockThreshold
	if threshold < 0 {
		threshold = rc.defaultThreshold
	}

	// 1. Days until restock (unbounded without measurable demand)
	// Tiers are decided on the exact cover; only the reported value is rounded.
	days := domain.InfiniteDays
	exact := math.Inf(1)
	hasUsage := dailyUsageRate > 0 && !math.IsNaN(dailyUsageRate) && !math.IsInf(dailyUsageRate, 0)
	if hasUsage {
		exact = float64(stock) / dailyUsageRate
		days = domain.Days(roundFloat(exact, 2))
	}

	// 2. Urgency: stock-level checks come before days-of-cover checks
	var urgency domain.RestockUrgency
	switch {
	case stock == 0:
		urgency = domain.UrgencyCritical
	case !hasUsage:
		urgency = domain.UrgencyNormal
	case exact <= rc.criticalDays:
		urgency = domain.UrgencyCritical
	case stock <= threshold || exact <= rc.warningDays:
		urgency = domain.UrgencyWarning
	default:
		urgency = domain.UrgencyNormal
	}

	return RestockForecast{
		DaysUntilRestock: days,
		Urgency:          urgency,
	}
}
