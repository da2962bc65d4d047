package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/forecast"
)

type fakeSnapshotRepository struct {
	mu         sync.Mutex
	items      []domain.InventoryItem
	records    []domain.RawTransaction
	err        error
	itemCalls  int
	txCalls    int
	lastFilter domain.ForecastFilter
}

func (r *fakeSnapshotRepository) GetInventoryItems(ctx context.Context, filter domain.ForecastFilter) ([]domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itemCalls++
	r.lastFilter = filter
	return r.items, nil
}

func (r *fakeSnapshotRepository) GetRawTransactions(ctx context.Context, filter domain.ForecastFilter) ([]domain.RawTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txCalls++
	if r.err != nil {
		return nil, r.err
	}
	return r.records, nil
}

type memoryForecastCache struct {
	reports     map[string]*domain.ForecastReport
	invalidated int
}

func newMemoryForecastCache() *memoryForecastCache {
	return &memoryForecastCache{reports: make(map[string]*domain.ForecastReport)}
}

func (c *memoryForecastCache) GetReport(ctx context.Context, key string) (*domain.ForecastReport, bool, error) {
	r, ok := c.reports[key]
	return r, ok, nil
}

func (c *memoryForecastCache) SetReport(ctx context.Context, key string, report *domain.ForecastReport) error {
	c.reports[key] = report
	return nil
}

func (c *memoryForecastCache) InvalidateAll(ctx context.Context) error {
	c.reports = make(map[string]*domain.ForecastReport)
	c.invalidated++
	return nil
}

func testRecords(days int) []domain.RawTransaction {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]domain.RawTransaction, 0, days)
	for d := 0; d < days; d++ {
		records = append(records, domain.RawTransaction{
			"sku":              "A100",
			"occurred_at":      start.AddDate(0, 0, d),
			"quantity":         int64(-2),
			"transaction_type": "sale",
			"unit_price":       "10.00",
		})
	}
	return records
}

func testEngine() *forecast.Engine {
	return forecast.NewEngine(forecast.DefaultConfig(), forecast.WithLogger(zerolog.Nop()))
}

func TestForecastService_GetReport(t *testing.T) {
	repo := &fakeSnapshotRepository{
		items: []domain.InventoryItem{
			{ID: "1", SKU: "A100", Name: "Widget", CurrentStock: 5, LowStockThreshold: 10, UnitPrice: 10},
			{ID: "2", SKU: "B200", Name: "Gadget", CurrentStock: 50, LowStockThreshold: 10},
		},
		records: testRecords(35),
	}
	c := newMemoryForecastCache()
	svc := NewForecastService(repo, c, testEngine())

	warehouse := int64(4)
	filter := domain.ForecastFilter{WarehouseID: &warehouse}

	report, err := svc.GetReport(context.Background(), filter)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(report.Predictions) != 2 {
		t.Fatalf("Expected 2 predictions, got %d", len(report.Predictions))
	}
	if report.Predictions[0].SKU != "A100" || report.Predictions[0].DaysUntilRestock != 2.5 {
		t.Errorf("Expected A100 first with 2.5 days, got %+v", report.Predictions[0])
	}
	if len(report.BestSellers) != 1 || report.BestSellers[0].TotalRevenue != 700 {
		t.Errorf("Expected A100 as only best seller with revenue 700, got %+v", report.BestSellers)
	}
	if repo.lastFilter.WarehouseID == nil || *repo.lastFilter.WarehouseID != warehouse {
		t.Error("Expected filter to reach the repository")
	}

	if _, err := svc.GetReport(context.Background(), filter); err != nil {
		t.Fatalf("Unexpected error on cached call: %v", err)
	}
	if repo.itemCalls != 1 || repo.txCalls != 1 {
		t.Errorf("Expected second call served from cache, got %d/%d repository calls", repo.itemCalls, repo.txCalls)
	}

	if err := svc.Invalidate(context.Background()); err != nil {
		t.Fatalf("Unexpected invalidate error: %v", err)
	}
	if _, err := svc.GetReport(context.Background(), filter); err != nil {
		t.Fatalf("Unexpected error after invalidate: %v", err)
	}
	if repo.itemCalls != 2 {
		t.Errorf("Expected repository reload after invalidate, got %d calls", repo.itemCalls)
	}
}

func TestForecastService_GetReportErrors(t *testing.T) {
	svc := NewForecastService(nil, nil, testEngine())
	if _, err := svc.GetReport(context.Background(), domain.ForecastFilter{}); !errors.Is(err, ErrNoRepository) {
		t.Errorf("Expected ErrNoRepository, got %v", err)
	}

	boom := errors.New("connection reset")
	repo := &fakeSnapshotRepository{err: boom}
	svc = NewForecastService(repo, nil, testEngine())
	if _, err := svc.GetReport(context.Background(), domain.ForecastFilter{}); !errors.Is(err, boom) {
		t.Errorf("Expected wrapped repository error, got %v", err)
	}
}

func TestForecastService_Evaluate(t *testing.T) {
	c := newMemoryForecastCache()
	svc := NewForecastService(nil, c, testEngine())

	req := domain.EvaluateRequest{
		Items:        []domain.InventoryItem{{ID: "1", SKU: "A100", CurrentStock: 5, LowStockThreshold: 10}},
		Transactions: append(testRecords(10), domain.RawTransaction{"sku": "A100"}),
	}

	report, err := svc.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Sufficiency.HasSufficientData {
		t.Error("Expected 10 days of history to be insufficient")
	}
	if report.Sufficiency.DaysUntilReady != 20 {
		t.Errorf("Expected 20 days until ready, got %d", report.Sufficiency.DaysUntilReady)
	}
	if len(report.Predictions) != 0 || len(report.BestSellers) != 0 || len(report.SlowMovers) != 0 {
		t.Error("Expected empty outputs below the sufficiency gate")
	}
	if report.SkippedTransactions != 1 {
		t.Errorf("Expected 1 skipped transaction, got %d", report.SkippedTransactions)
	}
	if len(c.reports) != 1 {
		t.Errorf("Expected evaluation to be cached, got %d entries", len(c.reports))
	}

	again, err := svc.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if again != report {
		t.Error("Expected identical payload to hit the cache")
	}
}
