package main

import (
	"context"
	"errors"
	"testing"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/storage"
)

type memoryStorage map[string][]byte

func (m memoryStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	infos := make([]storage.ObjectInfo, 0, len(m))
	for key, data := range m {
		infos = append(infos, storage.ObjectInfo{Key: key, Size: int64(len(data))})
	}
	return infos, nil
}

func (m memoryStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, ok := m[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m memoryStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	m[key] = data
	return nil
}

func TestLoadObjects(t *testing.T) {
	store := memoryStorage{
		"exports/items.json":       []byte(`[{"sku":"A100","name":"Widget","current_stock":5}]`),
		"exports/transactions.csv": []byte("sku,date,qty,type\nA100,2025-02-01,2,sale\nA100,2025-02-02,1,sale\n"),
	}
	ctx := context.Background()

	items, err := loadItemsObject(ctx, store, "exports/items.json")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].CurrentStock != 5 {
		t.Errorf("Unexpected items %+v", items)
	}

	records, err := loadTransactionsObject(ctx, store, "exports/transactions.csv")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}

	if _, err := loadItemsObject(ctx, store, "exports/missing.csv"); err == nil {
		t.Error("Expected an error for a missing key")
	}
}
