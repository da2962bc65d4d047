package forecast

import (
	"time"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

// ObservationWindow is the calendar span usage rates are measured over.
// Start and End are inclusive UTC days.
type ObservationWindow struct {
	Start    time.Time
	End      time.Time
	SpanDays int // Inclusive day count between Start and End
	MinDays  int // Lower bound applied to the divisor
}

// NewObservationWindow spans from the earliest event to asOf. When asOf is
// nil the latest event day closes the window, so the result depends only on
// the snapshot.
func NewObservationWindow(events []domain.TransactionEvent, asOf *time.Time, minDays int) ObservationWindow {
	var start, end time.Time
	hasEnd := asOf != nil
	if hasEnd {
		end = dayOf(*asOf)
	}

	for _, ev := range events {
		day := dayOf(ev.Timestamp)
		if hasEnd && day.After(end) {
			continue
		}
		if start.IsZero() || day.Before(start) {
			start = day
		}
		if !hasEnd && (end.IsZero() || day.After(end)) {
			end = day
		}
	}

	if start.IsZero() {
		start = end
	}

	span := 0
	if !end.IsZero() {
		span = daysBetween(start, end) + 1
	}

	return ObservationWindow{
		Start:    start,
		End:      end,
		SpanDays: span,
		MinDays:  minDays,
	}
}

// Contains reports whether t falls on a day inside the window.
func (w ObservationWindow) Contains(t time.Time) bool {
	if w.SpanDays == 0 {
		return false
	}
	day := dayOf(t)
	return !day.Before(w.Start) && !day.After(w.End)
}

// Divisor is the elapsed-day count used for rates, never below one.
func (w ObservationWindow) Divisor() int {
	d := w.SpanDays
	if d < w.MinDays {
		d = w.MinDays
	}
	if d < 1 {
		d = 1
	}
	return d
}

// EstimateDailyUsage sums outflow quantities of one SKU inside the window and
// spreads them over the window's elapsed days. Receipts and positive
// adjustments are ignored.
func EstimateDailyUsage(skuEvents []domain.TransactionEvent, w ObservationWindow) float64 {
	total := 0
	for _, ev := range skuEvents {
		if !ev.IsOutflow() || !w.Contains(ev.Timestamp) {
			continue
		}
		total += -ev.Quantity
	}
	if total == 0 {
		return 0
	}
	return float64(total) / float64(w.Divisor())
}

// DailyOutflow returns one bucket per window day holding the SKU's outflow.
func DailyOutflow(skuEvents []domain.TransactionEvent, w ObservationWindow) []float64 {
	series := make([]float64, w.SpanDays)
	for _, ev := range skuEvents {
		if !ev.IsOutflow() || !w.Contains(ev.Timestamp) {
			continue
		}
		series[daysBetween(w.Start, ev.Timestamp)] += float64(-ev.Quantity)
	}
	return series
}

// countInWindow counts the SKU's events of any kind inside the window.
func countInWindow(skuEvents []domain.TransactionEvent, w ObservationWindow) int {
	n := 0
	for _, ev := range skuEvents {
		if w.Contains(ev.Timestamp) {
			n++
		}
	}
	return n
}
