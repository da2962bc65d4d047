package storage

import (
	"context"
	"fmt"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/snapshot"
)

// LatestExports finds the items and transactions exports under prefix. Keys
// are expected to carry a sortable date, so the greatest key of each kind wins.
func LatestExports(ctx context.Context, store ObjectStorage, prefix string) (itemsKey, transactionsKey string, err error) {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return "", "", err
	}

	for _, obj := range objects {
		switch snapshot.ClassifyExport(obj.Key) {
		case snapshot.ExportItems:
			if obj.Key > itemsKey {
				itemsKey = obj.Key
			}
		case snapshot.ExportTransactions:
			if obj.Key > transactionsKey {
				transactionsKey = obj.Key
			}
		}
	}

	if itemsKey == "" {
		return "", "", fmt.Errorf("no inventory export under %q", prefix)
	}
	if transactionsKey == "" {
		return "", "", fmt.Errorf("no transaction export under %q", prefix)
	}
	return itemsKey, transactionsKey, nil
}
