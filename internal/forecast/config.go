package forecast

import (
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/config"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

// Config holds the tunables of the forecast engine
type Config struct {
	MinDaysWithData          int     // Distinct warehouse-wide days required before forecasting
	CriticalDays             float64 // Days of cover at or below which a SKU is critical
	WarningDays              float64 // Days of cover at or below which a SKU is a warning
	DefaultLowStockThreshold int     // Threshold used when an item carries a negative one
	ConfidenceSaturation     int     // Transaction count at which the confidence base term saturates
	VariancePenalty          float64 // Weight of the outflow dispersion penalty (0-1)
	TopN                     int     // Default ranking length
}

// DefaultConfig returns the standard engine constants
func DefaultConfig() Config {
	return Config{
		MinDaysWithData:          30,
		CriticalDays:             7,
		WarningDays:              14,
		DefaultLowStockThreshold: domain.DefaultLowStockThreshold,
		ConfidenceSaturation:     30,
		VariancePenalty:          0.5,
		TopN:                     5,
	}
}

// ConfigFromSettings maps the application settings onto an engine config.
func ConfigFromSettings(s config.ForecastConfig) Config {
	return Config{
		MinDaysWithData:          s.MinDaysWithData,
		CriticalDays:             s.CriticalDays,
		WarningDays:              s.WarningDays,
		DefaultLowStockThreshold: s.DefaultLowStockThreshold,
		ConfidenceSaturation:     s.ConfidenceSaturation,
		VariancePenalty:          s.VariancePenalty,
		TopN:                     s.TopN,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MinDaysWithData <= 0 {
		c.MinDaysWithData = def.MinDaysWithData
	}
	if c.CriticalDays <= 0 {
		c.CriticalDays = def.CriticalDays
	}
	if c.WarningDays < c.CriticalDays {
		c.WarningDays = def.WarningDays
		if c.WarningDays < c.CriticalDays {
			c.WarningDays = c.CriticalDays
		}
	}
	if c.DefaultLowStockThreshold < 0 {
		c.DefaultLowStockThreshold = def.DefaultLowStockThreshold
	}
	if c.ConfidenceSaturation <= 0 {
		c.ConfidenceSaturation = def.ConfidenceSaturation
	}
	if c.VariancePenalty < 0 || c.VariancePenalty > 1 {
		c.VariancePenalty = def.VariancePenalty
	}
	if c.TopN <= 0 {
		c.TopN = def.TopN
	}
	return c
}
