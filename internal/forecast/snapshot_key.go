package forecast

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

// SnapshotKey hashes a snapshot into a stable cache key. Items and events
// are sorted first so the same content in a different order maps to the same key.
func SnapshotKey(snapshot domain.Snapshot) string {
	items := append([]domain.InventoryItem(nil), snapshot.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SKU != items[j].SKU {
			return items[i].SKU < items[j].SKU
		}
		return items[i].ID < items[j].ID
	})

	events := append([]domain.TransactionEvent(nil), snapshot.Transactions...)
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.SKU != b.SKU {
			return a.SKU < b.SKU
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Quantity < b.Quantity
	})

	canonical := struct {
		Items  []domain.InventoryItem    `json:"i"`
		Events []domain.TransactionEvent `json:"e"`
		AsOf   string                    `json:"a"`
	}{
		Items:  items,
		Events: events,
	}
	if snapshot.AsOf != nil {
		canonical.AsOf = dayOf(*snapshot.AsOf).Format("2006-01-02")
	}

	payload, err := json.Marshal(canonical)
	if err != nil {
		// Snapshot types are plain data; Marshal cannot fail on them.
		return ""
	}
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}
