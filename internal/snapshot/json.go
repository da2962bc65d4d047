package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

// readItemsJSON accepts a bare array or an object with an "items" array.
func readItemsJSON(r io.Reader) ([]domain.InventoryItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read items json: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var items []domain.InventoryItem
	if isJSONArray(data) {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode items json: %w", err)
		}
		return items, nil
	}

	var wrapped struct {
		Items []domain.InventoryItem `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode items json: %w", err)
	}
	return wrapped.Items, nil
}

// readTransactionsJSON accepts a bare array or an object with a
// "transactions" array. Numbers are kept as json.Number.
func readTransactionsJSON(r io.Reader) ([]domain.RawTransaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read transactions json: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if isJSONArray(data) {
		var records []domain.RawTransaction
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode transactions json: %w", err)
		}
		return records, nil
	}

	var wrapped struct {
		Transactions []domain.RawTransaction `json:"transactions"`
	}
	if err := dec.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("decode transactions json: %w", err)
	}
	return wrapped.Transactions, nil
}

var utf8BOM = []byte("\ufeff")

func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
