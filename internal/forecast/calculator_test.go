package forecast

import (
	"math"
	"testing"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

func TestRestockCalculator_Calculate(t *testing.T) {
	calc := NewRestockCalculator(DefaultConfig())
	inf := math.Inf(1)

	testCases := []struct {
		name        string
		stock       int
		threshold   int
		rate        float64
		wantDays    float64
		wantUrgency domain.RestockUrgency
	}{
		{"empty shelf without demand", 0, 10, 0, inf, domain.UrgencyCritical},
		{"empty shelf with demand", 0, 10, 3, 0, domain.UrgencyCritical},
		{"oversold stock treated as empty", -4, 10, 3, 0, domain.UrgencyCritical},
		{"low stock without demand", 5, 10, 0, inf, domain.UrgencyNormal},
		{"two and a half days left", 5, 10, 2, 2.5, domain.UrgencyCritical},
		{"critical boundary", 14, 10, 2, 7, domain.UrgencyCritical},
		{"inside warning window", 15, 10, 2, 7.5, domain.UrgencyWarning},
		{"warning boundary", 28, 10, 2, 14, domain.UrgencyWarning},
		{"comfortable cover", 30, 10, 2, 15, domain.UrgencyNormal},
		{"at low-stock threshold", 8, 10, 0.1, 80, domain.UrgencyWarning},
		{"negative threshold falls back to default", 9, -1, 0.1, 90, domain.UrgencyWarning},
		{"zero threshold only uses days", 9, 0, 0.1, 90, domain.UrgencyNormal},
		{"rounded to two decimals", 10, 0, 3, 3.33, domain.UrgencyCritical},
		{"just past critical boundary", 7001, 10, 1000, 7, domain.UrgencyWarning},
		{"just past warning boundary", 14004, 10, 1000, 14, domain.UrgencyNormal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			item := domain.InventoryItem{SKU: "X", CurrentStock: tc.stock, LowStockThreshold: tc.threshold}
			got := calc.Calculate(item, tc.rate)

			if math.IsInf(tc.wantDays, 1) {
				if !got.DaysUntilRestock.IsInfinite() {
					t.Errorf("Expected infinite days, got %v", got.DaysUntilRestock)
				}
			} else if float64(got.DaysUntilRestock) != tc.wantDays {
				t.Errorf("Expected %v days, got %v", tc.wantDays, got.DaysUntilRestock)
			}
			if got.Urgency != tc.wantUrgency {
				t.Errorf("Expected urgency %s, got %s", tc.wantUrgency, got.Urgency)
			}
		})
	}
}

func TestRestockCalculator_CustomThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CriticalDays = 3
	cfg.WarningDays = 5
	calc := NewRestockCalculator(cfg)

	item := domain.InventoryItem{SKU: "X", CurrentStock: 40, LowStockThreshold: 0}
	if got := calc.Calculate(item, 10); got.Urgency != domain.UrgencyWarning {
		t.Errorf("Expected warning at 4 days with custom tiers, got %s", got.Urgency)
	}
	if got := calc.Calculate(item, 5); got.Urgency != domain.UrgencyNormal {
		t.Errorf("Expected normal at 8 days with custom tiers, got %s", got.Urgency)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{CriticalDays: 20, WarningDays: 10, VariancePenalty: 3}.withDefaults()

	if cfg.MinDaysWithData != 30 || cfg.TopN != 5 || cfg.ConfidenceSaturation != 30 {
		t.Errorf("Expected zero values to take defaults, got %+v", cfg)
	}
	if cfg.WarningDays < cfg.CriticalDays {
		t.Errorf("Expected warning tier >= critical tier, got %v < %v", cfg.WarningDays, cfg.CriticalDays)
	}
	if cfg.VariancePenalty != 0.5 {
		t.Errorf("Expected out-of-range penalty to reset to 0.5, got %v", cfg.VariancePenalty)
	}
}
