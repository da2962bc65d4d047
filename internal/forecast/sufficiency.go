package forecast

import (
	"fmt"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

// CountDaysWithData returns the number of distinct calendar days carrying at
// least one event, across every SKU in the snapshot.
func CountDaysWithData(events []domain.TransactionEvent) int {
	days := make(map[int64]struct{})
	for _, ev := range events {
		days[dayOf(ev.Timestamp).Unix()] = struct{}{}
	}
	return len(days)
}

// EvaluateSufficiency applies the minimum-history gate.
func EvaluateSufficiency(events []domain.TransactionEvent, minDays int) domain.DataSufficiencyResult {
	daysWithData := CountDaysWithData(events)

	daysUntilReady := minDays - daysWithData
	if daysUntilReady < 0 {
		daysUntilReady = 0
	}

	result := domain.DataSufficiencyResult{
		HasSufficientData: daysWithData >= minDays,
		DaysWithData:      daysWithData,
		DaysUntilReady:    daysUntilReady,
	}

	if result.HasSufficientData {
		result.Message = fmt.Sprintf("Sufficient data: %d days collected", daysWithData)
	} else {
		result.Message = fmt.Sprintf("Insufficient data: %d/%d days collected", daysWithData, minDays)
	}

	return result
}
