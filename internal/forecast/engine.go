package forecast

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/saas-management-techmomentum/nova-ware-sub000/pkg/logger"
)

// Engine runs the predictive-inventory pipeline over an immutable snapshot.
// It holds no mutable state, so one Engine may serve concurrent callers.
type Engine struct {
	config     Config
	normalizer *Normalizer
	calculator *RestockCalculator
	scorer     *ConfidenceScorer
	log        zerolog.Logger
}

// Option customizes an Engine
type Option func(*Engine)

// WithLogger routes engine diagnostics to l.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine creates a new forecast engine
func NewEngine(cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		config:     cfg,
		normalizer: NewNormalizer(),
		calculator: NewRestockCalculator(cfg),
		scorer:     NewConfidenceScorer(cfg),
		log:        logger.Log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Normalize maps raw source records onto the uniform event stream.
func (e *Engine) Normalize(records []domain.RawTransaction) NormalizeResult {
	result := e.normalizer.Normalize(records)
	if result.Skipped > 0 {
		e.log.Debug().
			Int("skipped", result.Skipped).
			Interface("reasons", result.SkipReasons).
			Msg("forecast: skipped malformed transactions")
	}
	return result
}

// EvaluateDataSufficiency reports whether the history is long enough to forecast.
func (e *Engine) EvaluateDataSufficiency(events []domain.TransactionEvent) domain.DataSufficiencyResult {
	return EvaluateSufficiency(events, e.config.MinDaysWithData)
}

// GeneratePredictions returns one prediction per inventory SKU, or an empty
// list when the history does not pass the sufficiency gate.
func (e *Engine) GeneratePredictions(items []domain.InventoryItem, events []domain.TransactionEvent) []domain.Prediction {
	predictions, _ := e.predict(items, events, nil)
	return predictions
}

// RankBestSellers returns the topN SKUs by units sold.
func (e *Engine) RankBestSellers(predictions []domain.Prediction, events []domain.TransactionEvent, items []domain.InventoryItem, topN int) []domain.RankedSalesEntry {
	if !e.rankable(predictions, events) {
		return []domain.RankedSalesEntry{}
	}
	return rankBestSellers(buildSalesEntries(predictions, events, items), e.topN(topN))
}

// RankSlowMovers returns the topN SKUs with the fewest units sold.
func (e *Engine) RankSlowMovers(predictions []domain.Prediction, events []domain.TransactionEvent, items []domain.InventoryItem, topN int) []domain.RankedSalesEntry {
	if !e.rankable(predictions, events) {
		return []domain.RankedSalesEntry{}
	}
	return rankSlowMovers(buildSalesEntries(predictions, events, items), e.topN(topN))
}

// Analyze runs every stage over an already-normalized snapshot.
func (e *Engine) Analyze(snapshot domain.Snapshot, topN int) domain.ForecastReport {
	events := eventsUntil(snapshot.Transactions, snapshot.AsOf)

	sufficiency := e.EvaluateDataSufficiency(events)
	predictions, dropped := e.predict(snapshot.Items, events, snapshot.AsOf)

	report := domain.ForecastReport{
		SnapshotKey: SnapshotKey(snapshot),
		AsOf:        snapshot.AsOf,
		Sufficiency: sufficiency,
		Predictions: predictions,
		BestSellers: e.RankBestSellers(predictions, events, snapshot.Items, topN),
		SlowMovers:  e.RankSlowMovers(predictions, events, snapshot.Items, topN),
		DroppedSKUs: dropped,
	}
	return report
}

// AnalyzeRaw normalizes raw records and runs Analyze, carrying the skip count.
func (e *Engine) AnalyzeRaw(items []domain.InventoryItem, records []domain.RawTransaction, asOf *time.Time, topN int) domain.ForecastReport {
	normalized := e.Normalize(records)
	report := e.Analyze(domain.Snapshot{
		Items:        items,
		Transactions: normalized.Events,
		AsOf:         asOf,
	}, topN)
	report.SkippedTransactions = normalized.Skipped
	return report
}

func (e *Engine) predict(items []domain.InventoryItem, events []domain.TransactionEvent, asOf *time.Time) ([]domain.Prediction, []string) {
	events = eventsUntil(events, asOf)

	bySKU := make(map[string][]domain.TransactionEvent)
	for _, ev := range events {
		bySKU[ev.SKU] = append(bySKU[ev.SKU], ev)
	}

	catalog := make([]domain.InventoryItem, 0, len(items))
	known := make(map[string]struct{}, len(items))
	for _, item := range items {
		sku := strings.TrimSpace(item.SKU)
		if sku == "" {
			e.log.Warn().Str("item_id", item.ID).Msg("forecast: inventory item without sku ignored")
			continue
		}
		if _, dup := known[sku]; dup {
			e.log.Warn().Str("sku", sku).Msg("forecast: duplicate inventory sku ignored")
			continue
		}
		known[sku] = struct{}{}
		item.SKU = sku
		catalog = append(catalog, item)
	}

	dropped := make([]string, 0)
	for sku := range bySKU {
		if _, ok := known[sku]; !ok {
			dropped = append(dropped, sku)
		}
	}
	sort.Strings(dropped)
	if len(dropped) > 0 {
		e.log.Warn().
			Int("count", len(dropped)).
			Strs("skus", dropped).
			Msg("forecast: transactions reference skus missing from inventory")
	}

	sufficiency := e.EvaluateDataSufficiency(events)
	if !sufficiency.HasSufficientData {
		e.log.Info().
			Int("days_with_data", sufficiency.DaysWithData).
			Int("days_until_ready", sufficiency.DaysUntilReady).
			Msg("forecast: insufficient data, no predictions emitted")
		return []domain.Prediction{}, dropped
	}

	window := NewObservationWindow(events, asOf, e.config.MinDaysWithData)

	predictions := make([]domain.Prediction, 0, len(catalog))
	for _, item := range catalog {
		skuEvents := bySKU[item.SKU]

		rate := EstimateDailyUsage(skuEvents, window)
		restock := e.calculator.Calculate(item, rate)
		confidence := e.scorer.Score(
			countInWindow(skuEvents, window),
			sufficiency.DaysWithData,
			DailyOutflow(skuEvents, window),
		)

		predictions = append(predictions, domain.Prediction{
			ItemID:           item.ID,
			SKU:              item.SKU,
			Name:             item.Name,
			CurrentStock:     item.CurrentStock,
			DailyUsageRate:   roundFloat(rate, 4),
			DaysUntilRestock: restock.DaysUntilRestock,
			RestockUrgency:   restock.Urgency,
			Confidence:       confidence,
		})
	}

	sortPredictions(predictions)
	return predictions, dropped
}

// rankable applies the same gate as predictions: no rankings without enough history.
func (e *Engine) rankable(predictions []domain.Prediction, events []domain.TransactionEvent) bool {
	if len(predictions) == 0 {
		return false
	}
	return e.EvaluateDataSufficiency(events).HasSufficientData
}

func (e *Engine) topN(n int) int {
	if n <= 0 {
		return e.config.TopN
	}
	return n
}

// sortPredictions orders by urgency, then days of cover (infinite last), then SKU.
func sortPredictions(predictions []domain.Prediction) {
	sort.SliceStable(predictions, func(i, j int) bool {
		a, b := predictions[i], predictions[j]
		if a.RestockUrgency.Rank() != b.RestockUrgency.Rank() {
			return a.RestockUrgency.Rank() < b.RestockUrgency.Rank()
		}
		if a.DaysUntilRestock != b.DaysUntilRestock {
			return a.DaysUntilRestock < b.DaysUntilRestock
		}
		return a.SKU < b.SKU
	})
}

func eventsUntil(events []domain.TransactionEvent, asOf *time.Time) []domain.TransactionEvent {
	if asOf == nil {
		return events
	}
	end := dayOf(*asOf)
	filtered := make([]domain.TransactionEvent, 0, len(events))
	for _, ev := range events {
		if !dayOf(ev.Timestamp).After(end) {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}
