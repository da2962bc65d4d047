// Package snapshot reads inventory and transaction exports (CSV, XLSX, JSON)
// into the inputs of a forecast run.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

// ErrUnsupportedFormat is returned for exports that are not CSV, XLSX or JSON.
var ErrUnsupportedFormat = errors.New("snapshot: unsupported file format")

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// FormatFromName infers the export format from a file or object name.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// ReadItems parses an inventory export.
func ReadItems(r io.Reader, format Format) ([]domain.InventoryItem, error) {
	switch format {
	case FormatJSON:
		return readItemsJSON(r)
	case FormatCSV, FormatXLSX:
		table, err := readTable(r, format)
		if err != nil {
			return nil, err
		}
		return itemsFromTable(table)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ReadTransactions parses a transaction export into raw records. Column
// names are kept as-is; the forecast Normalizer resolves their aliases.
func ReadTransactions(r io.Reader, format Format) ([]domain.RawTransaction, error) {
	switch format {
	case FormatJSON:
		return readTransactionsJSON(r)
	case FormatCSV, FormatXLSX:
		table, err := readTable(r, format)
		if err != nil {
			return nil, err
		}
		return transactionsFromTable(table), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func LoadItemsFile(path string) ([]domain.InventoryItem, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items file: %w", err)
	}
	defer f.Close()

	items, err := ReadItems(f, format)
	if err != nil {
		return nil, fmt.Errorf("read items %s: %w", path, err)
	}
	return items, nil
}

func LoadTransactionsFile(path string) ([]domain.RawTransaction, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transactions file: %w", err)
	}
	defer f.Close()

	records, err := ReadTransactions(f, format)
	if err != nil {
		return nil, fmt.Errorf("read transactions %s: %w", path, err)
	}
	return records, nil
}

// LoadItemsBytes and LoadTransactionsBytes parse an export already held in
// memory, e.g. downloaded from object storage or Drive.
func LoadItemsBytes(name string, data []byte) ([]domain.InventoryItem, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	return ReadItems(bytes.NewReader(data), format)
}

func LoadTransactionsBytes(name string, data []byte) ([]domain.RawTransaction, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	return ReadTransactions(bytes.NewReader(data), format)
}
