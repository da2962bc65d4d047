package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *domain.ForecastReport {
	return &domain.ForecastReport{
		Predictions: []domain.Prediction{
			{SKU: "A100", Name: "Widget", CurrentStock: 5, DailyUsageRate: 2, DaysUntilRestock: 2.5, RestockUrgency: domain.UrgencyCritical, Confidence: 0.9},
			{SKU: "B200", Name: "Gadget", CurrentStock: 50, DaysUntilRestock: domain.InfiniteDays, RestockUrgency: domain.UrgencyNormal},
		},
		BestSellers: []domain.RankedSalesEntry{{SKU: "A100", Name: "Widget", TotalSold: 70, TotalRevenue: 700, CurrentStock: 5}},
		SlowMovers:  []domain.RankedSalesEntry{{SKU: "B200", Name: "Gadget", CurrentStock: 50}},
	}
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"pdf", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseFormat(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Expected error %v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Unexpected error reading csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if got := records[1][4]; got != "2.5" {
		t.Errorf("Expected days 2.5, got %s", got)
	}
	if got := records[2][4]; got != "" {
		t.Errorf("Expected empty days for infinite restock, got %s", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleReport()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Unexpected error opening workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != "Predictions" {
		t.Fatalf("Unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows("Best Sellers")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "A100" || rows[1][2] != "70" {
		t.Errorf("Unexpected best seller rows %v", rows)
	}
}

func TestWriteJSON(t *testing.T) {
	data, err := Encode(sampleReport(), FormatJSON)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"days_until_restock": null`) {
		t.Errorf("Expected infinite days encoded as null, got %s", data)
	}
}
