package snapshot

import (
	"path/filepath"
	"strings"
)

// ExportKind tells which half of a snapshot an export file holds.
type ExportKind int

const (
	ExportUnknown ExportKind = iota
	ExportItems
	ExportTransactions
)

// ClassifyExport guesses the export kind from a file or object name.
// Names without a supported extension are unknown.
func ClassifyExport(name string) ExportKind {
	if _, err := FormatFromName(name); err != nil {
		return ExportUnknown
	}
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	switch {
	case strings.Contains(base, "transaction"), strings.Contains(base, "movement"), strings.Contains(base, "sales"):
		return ExportTransactions
	case strings.Contains(base, "item"), strings.Contains(base, "inventory"), strings.Contains(base, "stock"), strings.Contains(base, "catalog"):
		return ExportItems
	default:
		return ExportUnknown
	}
}
