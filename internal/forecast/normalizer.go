package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/spf13/cast"
)

// Skip reasons reported by the Normalizer
const (
	SkipMissingSKU       = "missing_sku"
	SkipMissingTimestamp = "missing_timestamp"
	SkipInvalidTimestamp = "invalid_timestamp"
	SkipInvalidQuantity  = "invalid_quantity"
	SkipUnknownKind      = "unknown_kind"
)

var (
	skuFields       = []string{"sku", "productsku", "itemsku", "skucode", "product"}
	timestampFields = []string{"timestamp", "date", "createdat", "transactiondate", "occurredat"}
	quantityFields  = []string{"quantity", "qty", "amount", "units"}
	kindFields      = []string{"kind", "type", "transactiontype", "movementtype"}
	unitPriceFields = []string{"unitprice", "priceatsale", "saleprice", "price"}
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

// NormalizeResult is the uniform event stream plus skip diagnostics
type NormalizeResult struct {
	Events      []domain.TransactionEvent
	Skipped     int
	SkipReasons map[string]int
}

// Normalizer maps heterogeneous transaction records onto domain.TransactionEvent
type Normalizer struct{}

// NewNormalizer creates a new transaction normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts raw records into day-granular signed events. Malformed
// records are counted and dropped; Normalize never fails.
func (n *Normalizer) Normalize(records []domain.RawTransaction) NormalizeResult {
	result := NormalizeResult{
		Events:      make([]domain.TransactionEvent, 0, len(records)),
		SkipReasons: make(map[string]int),
	}

	for _, rec := range records {
		event, reason := n.normalizeRecord(rec)
		if reason != "" {
			result.Skipped++
			result.SkipReasons[reason]++
			continue
		}
		result.Events = append(result.Events, event)
	}

	SortEvents(result.Events)
	return result
}

// NormalizeEvents re-applies the day granularity and sign rules to events
// that are already typed, e.g. events posted by an API caller.
func (n *Normalizer) NormalizeEvents(events []domain.TransactionEvent) NormalizeResult {
	records := make([]domain.RawTransaction, 0, len(events))
	for _, ev := range events {
		rec := domain.RawTransaction{
			"sku":       ev.SKU,
			"timestamp": ev.Timestamp,
			"quantity":  ev.Quantity,
			"kind":      string(ev.Kind),
		}
		if ev.UnitPrice != nil {
			rec["unit_price"] = *ev.UnitPrice
		}
		records = append(records, rec)
	}
	return n.Normalize(records)
}

// SortEvents orders events by day then SKU; equal keys keep their source order.
func SortEvents(events []domain.TransactionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].SKU < events[j].SKU
	})
}

func (n *Normalizer) normalizeRecord(rec domain.RawTransaction) (domain.TransactionEvent, string) {
	// Keys are folded in sorted order so colliding aliases resolve the same way every time.
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make(map[string]interface{}, len(rec))
	for _, k := range keys {
		key := normalizeFieldName(k)
		if existing, exists := fields[key]; !exists || existing == nil {
			fields[key] = rec[k]
		}
	}

	// 1. SKU
	rawSKU, ok := lookupField(fields, skuFields)
	if !ok {
		return domain.TransactionEvent{}, SkipMissingSKU
	}
	sku := strings.TrimSpace(toString(rawSKU))
	if sku == "" {
		return domain.TransactionEvent{}, SkipMissingSKU
	}

	// 2. Calendar day
	rawTS, ok := lookupField(fields, timestampFields)
	if !ok {
		return domain.TransactionEvent{}, SkipMissingTimestamp
	}
	day, reason := parseDay(rawTS)
	if reason != "" {
		return domain.TransactionEvent{}, reason
	}

	// 3. Kind (absent kind is a plain adjustment)
	kind := domain.KindAdjustment
	if rawKind, ok := lookupField(fields, kindFields); ok {
		label := strings.TrimSpace(toString(rawKind))
		if label != "" {
			parsed, known := domain.ParseTransactionKind(label)
			if !known {
				return domain.TransactionEvent{}, SkipUnknownKind
			}
			kind = parsed
		}
	}

	// 4. Signed quantity
	rawQty, ok := lookupField(fields, quantityFields)
	if !ok {
		return domain.TransactionEvent{}, SkipInvalidQuantity
	}
	qty, ok := parseQuantity(rawQty)
	if !ok {
		return domain.TransactionEvent{}, SkipInvalidQuantity
	}
	switch kind {
	case domain.KindSale, domain.KindDamage:
		qty = -absInt(qty)
	case domain.KindReceipt:
		qty = absInt(qty)
	}

	event := domain.TransactionEvent{
		SKU:       sku,
		Timestamp: day,
		Quantity:  qty,
		Kind:      kind,
	}

	// 5. Optional historical price
	if rawPrice, ok := lookupField(fields, unitPriceFields); ok {
		if price, err := parseNumber(rawPrice); err == nil && price >= 0 {
			event.UnitPrice = &price
		}
	}

	return event, ""
}

var fieldNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeFieldName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return fieldNameSanitizer.Replace(name)
}

func lookupField(fields map[string]interface{}, aliases []string) (interface{}, bool) {
	for _, alias := range aliases {
		if v, ok := fields[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case domain.TransactionKind:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func parseDay(v interface{}) (time.Time, string) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, SkipMissingTimestamp
		}
		return dayOf(t), ""
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, SkipMissingTimestamp
		}
		return dayOf(*t), ""
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, SkipMissingTimestamp
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return dayOf(parsed), ""
			}
		}
		parsed, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
		if err != nil || parsed.IsZero() {
			return time.Time{}, SkipInvalidTimestamp
		}
		return dayOf(parsed), ""
	}

	// Numeric values are unix seconds
	secs, err := cast.ToInt64E(v)
	if err != nil || secs <= 0 {
		return time.Time{}, SkipInvalidTimestamp
	}
	return dayOf(time.Unix(secs, 0).UTC()), ""
}

func parseNumber(v interface{}) (float64, error) {
	if s, ok := v.(string); ok {
		v = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %v", v)
	}
	return f, nil
}

func parseQuantity(v interface{}) (int, bool) {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return 0, false
	}
	f, err := parseNumber(v)
	if err != nil {
		return 0, false
	}
	return int(math.Round(f)), true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
