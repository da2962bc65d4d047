package forecast

import "math"

// ConfidenceScorer rates how far a single forecast can be trusted. The score
// is advisory and never feeds back into the urgency tier.
type ConfidenceScorer struct {
	saturation      int
	minDays         int
	variancePenalty float64
}

// NewConfidenceScorer creates a new confidence scorer
func NewConfidenceScorer(cfg Config) *ConfidenceScorer {
	cfg = cfg.withDefaults()
	return &ConfidenceScorer{
		saturation:      cfg.ConfidenceSaturation,
		minDays:         cfg.MinDaysWithData,
		variancePenalty: cfg.VariancePenalty,
	}
}

// Score combines observation count, warehouse history and outflow dispersion into [0,1].
func (cs *ConfidenceScorer) Score(transactionCount, daysWithData int, dailyOutflow []float64) float64 {
	base := math.Min(1, float64(transactionCount)/float64(cs.saturation))
	history := math.Min(1, float64(daysWithData)/float64(cs.minDays))
	penalty := cs.variancePenalty * OutflowDispersion(dailyOutflow)

	score := clamp01(base * history * (1 - penalty))
	return roundFloat(score, 4)
}

// OutflowDispersion normalizes the variance of a daily outflow series into
// [0,1) as CV²/(1+CV²). A series without outflow has no dispersion.
func OutflowDispersion(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}

	var sum float64
	for _, v := range series {
		sum += v
	}
	mean := sum / float64(len(series))
	if mean <= 0 {
		return 0
	}

	var sq float64
	for _, v := range series {
		d := v - mean
		sq += d * d
	}
	variance := sq / float64(len(series))

	cv2 := variance / (mean * mean)
	return cv2 / (1 + cv2)
}
