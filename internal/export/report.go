package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatXLSX:
		return Format(s), nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", s)
	}
}

var predictionHeader = []string{
	"sku", "name", "current_stock", "daily_usage_rate",
	"days_until_restock", "restock_urgency", "confidence",
}

var rankedHeader = []string{"sku", "name", "total_sold", "total_revenue", "current_stock"}

// Write renders the report in the given format.
func Write(w io.Writer, report *domain.ForecastReport, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, report)
	case FormatXLSX:
		return WriteXLSX(w, report)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
}

// Encode is Write into memory, used for uploads.
func Encode(report *domain.ForecastReport, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, report, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes the prediction table only.
func WriteCSV(w io.Writer, report *domain.ForecastReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(predictionHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range report.Predictions {
		if err := cw.Write(predictionRow(p)); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", p.SKU, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with one sheet per report table.
func WriteXLSX(w io.Writer, report *domain.ForecastReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const predictionsSheet = "Predictions"
	if err := f.SetSheetName(f.GetSheetName(0), predictionsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	rows := make([][]string, 0, len(report.Predictions))
	for _, p := range report.Predictions {
		rows = append(rows, predictionRow(p))
	}
	if err := writeSheet(f, predictionsSheet, predictionHeader, rows); err != nil {
		return err
	}

	for _, sheet := range []struct {
		name    string
		entries []domain.RankedSalesEntry
	}{
		{"Best Sellers", report.BestSellers},
		{"Slow Movers", report.SlowMovers},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}
		rows := make([][]string, 0, len(sheet.entries))
		for _, e := range sheet.entries {
			rows = append(rows, rankedRow(e))
		}
		if err := writeSheet(f, sheet.name, rankedHeader, rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	all := append([][]string{header}, rows...)
	for i, record := range all {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

func predictionRow(p domain.Prediction) []string {
	days := ""
	if !p.DaysUntilRestock.IsInfinite() {
		days = formatFloat(float64(p.DaysUntilRestock))
	}
	return []string{
		p.SKU,
		p.Name,
		strconv.Itoa(p.CurrentStock),
		formatFloat(p.DailyUsageRate),
		days,
		string(p.RestockUrgency),
		formatFloat(p.Confidence),
	}
}

func rankedRow(e domain.RankedSalesEntry) []string {
	return []string{
		e.SKU,
		e.Name,
		strconv.Itoa(e.TotalSold),
		formatFloat(e.TotalRevenue),
		strconv.Itoa(e.CurrentStock),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
