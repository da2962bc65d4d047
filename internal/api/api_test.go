package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/api/middleware"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/forecast"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/service"
)

type stubSnapshotRepository struct {
	items      []domain.InventoryItem
	records    []domain.RawTransaction
	lastFilter domain.ForecastFilter
}

func (r *stubSnapshotRepository) GetInventoryItems(ctx context.Context, filter domain.ForecastFilter) ([]domain.InventoryItem, error) {
	r.lastFilter = filter
	return r.items, nil
}

func (r *stubSnapshotRepository) GetRawTransactions(ctx context.Context, filter domain.ForecastFilter) ([]domain.RawTransaction, error) {
	return r.records, nil
}

func newTestRouter(repo *stubSnapshotRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := forecast.NewEngine(forecast.DefaultConfig(), forecast.WithLogger(zerolog.Nop()))

	var svc *service.ForecastService
	if repo != nil {
		svc = service.NewForecastService(repo, nil, engine)
	} else {
		svc = service.NewForecastService(nil, nil, engine)
	}
	return NewRouter(&Services{ForecastService: svc}, []string{"*"})
}

func warehouseRepo() *stubSnapshotRepository {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]domain.RawTransaction, 0, 70)
	for d := 0; d < 35; d++ {
		day := start.AddDate(0, 0, d).Format("2006-01-02")
		records = append(records,
			domain.RawTransaction{"sku": "A100", "occurred_at": day, "quantity": -2, "transaction_type": "sale"},
			domain.RawTransaction{"sku": "C300", "occurred_at": day, "quantity": -1, "transaction_type": "sale"},
		)
	}

	return &stubSnapshotRepository{
		items: []domain.InventoryItem{
			{ID: "1", SKU: "A100", Name: "Widget", CurrentStock: 5, LowStockThreshold: 10, UnitPrice: 10},
			{ID: "2", SKU: "B200", Name: "Gadget", CurrentStock: 50, LowStockThreshold: 10, UnitPrice: 3},
			{ID: "3", SKU: "C300", Name: "Bracket", CurrentStock: 100, LowStockThreshold: 10, UnitPrice: 1},
		},
		records: records,
	}
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Report(t *testing.T) {
	repo := warehouseRepo()
	router := newTestRouter(repo)

	w := doRequest(router, http.MethodGet, "/api/v1/forecast/report?warehouse_id=2&since=2025-01-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var report domain.ForecastReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.Sufficiency.HasSufficientData {
		t.Errorf("Expected sufficient data, got %+v", report.Sufficiency)
	}
	if len(report.Predictions) != 3 {
		t.Fatalf("Expected 3 predictions, got %d", len(report.Predictions))
	}
	if report.Predictions[0].SKU != "A100" || report.Predictions[0].RestockUrgency != domain.UrgencyCritical {
		t.Errorf("Expected A100 critical first, got %+v", report.Predictions[0])
	}

	var b200 *domain.Prediction
	for i := range report.Predictions {
		if report.Predictions[i].SKU == "B200" {
			b200 = &report.Predictions[i]
		}
	}
	if b200 == nil || !b200.DaysUntilRestock.IsInfinite() {
		t.Errorf("Expected B200 days_until_restock to round-trip as infinite, got %+v", b200)
	}

	if repo.lastFilter.WarehouseID == nil || *repo.lastFilter.WarehouseID != 2 {
		t.Error("Expected warehouse_id to reach the repository")
	}
	if repo.lastFilter.Since == nil {
		t.Error("Expected since to reach the repository")
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
}

func TestRouter_Rankings(t *testing.T) {
	router := newTestRouter(warehouseRepo())

	w := doRequest(router, http.MethodGet, "/api/v1/forecast/best_sellers?top_n=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var best struct {
		BestSellers []domain.RankedSalesEntry `json:"best_sellers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &best); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(best.BestSellers) != 1 || best.BestSellers[0].SKU != "A100" {
		t.Errorf("Expected A100 as top seller, got %+v", best.BestSellers)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/forecast/slow_movers", nil)
	var slow struct {
		SlowMovers []domain.RankedSalesEntry `json:"slow_movers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &slow); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := make([]string, 0, len(slow.SlowMovers))
	for _, e := range slow.SlowMovers {
		got = append(got, e.SKU)
	}
	if want := []string{"B200", "C300", "A100"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected slow movers %v, got %v", want, got)
	}
}

func TestRouter_BadQuery(t *testing.T) {
	router := newTestRouter(warehouseRepo())

	testCases := []struct {
		name string
		path string
	}{
		{"bad warehouse", "/api/v1/forecast/report?warehouse_id=north"},
		{"bad since", "/api/v1/forecast/sufficiency?since=last-week"},
		{"bad as_of", "/api/v1/forecast/predictions?as_of=31/31/2025"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tc.path, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestRouter_NoRepository(t *testing.T) {
	router := newTestRouter(nil)

	w := doRequest(router, http.MethodGet, "/api/v1/forecast/report", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 without a repository, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/forecast/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected health to succeed, got %d", w.Code)
	}
}

func TestRouter_Evaluate(t *testing.T) {
	router := newTestRouter(nil)

	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"id": "1", "sku": "A100", "name": "Widget", "current_stock": 5},
		},
		"transactions": []map[string]interface{}{
			{"sku": "A100", "date": "2025-01-01", "qty": 3, "type": "sale"},
			{"sku": "A100", "date": "2025-01-02", "qty": "two", "type": "sale"},
		},
	}
	body, _ := json.Marshal(payload)

	w := doRequest(router, http.MethodPost, "/api/v1/forecast/evaluate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var report domain.ForecastReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Sufficiency.HasSufficientData || report.Sufficiency.DaysUntilReady != 29 {
		t.Errorf("Expected 29 days until ready, got %+v", report.Sufficiency)
	}
	if report.SkippedTransactions != 1 {
		t.Errorf("Expected 1 skipped transaction, got %d", report.SkippedTransactions)
	}
	if len(report.Predictions) != 0 {
		t.Errorf("Expected no predictions below the gate, got %d", len(report.Predictions))
	}

	w = doRequest(router, http.MethodPost, "/api/v1/forecast/evaluate", []byte("{not json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for malformed body, got %d", w.Code)
	}
}

func TestRouter_InvalidateCache(t *testing.T) {
	router := newTestRouter(warehouseRepo())

	w := doRequest(router, http.MethodDelete, "/api/v1/forecast/cache", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	if allowAll {
		t.Error("Expected allowAll to be false")
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(origins, want) {
		t.Errorf("Expected %v, got %v", want, origins)
	}

	if _, allowAll := normalizeAllowedOrigins([]string{"*"}); !allowAll {
		t.Error("Expected wildcard to allow all origins")
	}
}
