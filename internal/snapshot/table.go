package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// table is a header row plus data rows from a CSV file or spreadsheet.
type table struct {
	header []string
	rows   [][]string
}

func readTable(r io.Reader, format Format) (table, error) {
	if format == FormatXLSX {
		return readXLSXTable(r)
	}
	return readCSVTable(r)
}

func readCSVTable(r io.Reader) (table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return table{}, nil
	}
	if err != nil {
		return table{}, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := table{header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table{}, fmt.Errorf("failed to read CSV record: %w", err)
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

// readXLSXTable reads the first sheet of a workbook.
func readXLSXTable(r io.Reader) (table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return table{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return table{}, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var t table
	first := true
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return table{}, fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}
		if first {
			t.header = record
			first = false
			continue
		}
		t.rows = append(t.rows, record)
	}

	if err := rows.Error(); err != nil {
		return table{}, fmt.Errorf("error iterating rows in sheet %s: %w", sheet, err)
	}

	return t, nil
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

func (t table) colIndex(names ...string) int {
	for _, name := range names {
		target := normalizeColumnName(name)
		for i, h := range t.header {
			if normalizeColumnName(h) == target {
				return i
			}
		}
	}
	return -1
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func itemsFromTable(t table) ([]domain.InventoryItem, error) {
	idxID := t.colIndex("id", "item id", "item_id", "product id")
	idxSKU := t.colIndex("sku", "product sku", "item sku", "sku code")
	idxName := t.colIndex("name", "product name", "item name", "nama")
	idxStock := t.colIndex("current_stock", "current stock", "stock", "stok", "on hand", "quantity")
	idxThreshold := t.colIndex("low_stock_threshold", "low stock threshold", "threshold", "reorder point", "min stock")
	idxPrice := t.colIndex("unit_price", "unit price", "price", "harga")

	if idxSKU < 0 {
		return nil, fmt.Errorf("missing required column: sku")
	}
	if idxStock < 0 {
		return nil, fmt.Errorf("missing required column: current_stock")
	}

	items := make([]domain.InventoryItem, 0, len(t.rows))
	for i, record := range t.rows {
		line := i + 2 // header is line 1

		sku := cell(record, idxSKU)
		if sku == "" {
			continue
		}

		stock, err := parseIntCell(cell(record, idxStock))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid current stock: %w", line, err)
		}

		threshold := domain.DefaultLowStockThreshold
		if raw := cell(record, idxThreshold); raw != "" {
			if threshold, err = parseIntCell(raw); err != nil {
				return nil, fmt.Errorf("line %d: invalid low stock threshold: %w", line, err)
			}
		}

		var price float64
		if raw := cell(record, idxPrice); raw != "" {
			if price, err = cast.ToFloat64E(strings.ReplaceAll(raw, ",", "")); err != nil {
				return nil, fmt.Errorf("line %d: invalid unit price: %w", line, err)
			}
			if price < 0 {
				return nil, fmt.Errorf("line %d: negative unit price %s", line, raw)
			}
		}

		id := cell(record, idxID)
		if id == "" {
			id = sku
		}

		items = append(items, domain.InventoryItem{
			ID:                id,
			SKU:               sku,
			Name:              cell(record, idxName),
			CurrentStock:      stock,
			LowStockThreshold: threshold,
			UnitPrice:         price,
		})
	}

	return items, nil
}

func transactionsFromTable(t table) []domain.RawTransaction {
	records := make([]domain.RawTransaction, 0, len(t.rows))
	for _, record := range t.rows {
		rec := make(domain.RawTransaction, len(t.header))
		empty := true
		for i, h := range t.header {
			v := cell(record, i)
			if v == "" {
				continue
			}
			rec[strings.TrimSpace(h)] = v
			empty = false
		}
		if empty {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func parseIntCell(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	f, err := cast.ToFloat64E(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}
