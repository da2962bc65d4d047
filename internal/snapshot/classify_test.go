package snapshot

import "testing"

func TestClassifyExport(t *testing.T) {
	testCases := []struct {
		name string
		want ExportKind
	}{
		{"inventory_items_2025-02-01.csv", ExportItems},
		{"Stock Snapshot.xlsx", ExportItems},
		{"transactions-2025-02.json", ExportTransactions},
		{"Sales Ledger.csv", ExportTransactions},
		{"exports/2025-02/items.csv", ExportItems},
		{"exports/inventory/transactions.csv", ExportTransactions},
		{"readme.txt", ExportUnknown},
		{"notes.csv", ExportUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyExport(tc.name); got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}
