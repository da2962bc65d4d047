package forecast

import (
	"math"
	"sort"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

type salesTotals struct {
	sold    int
	revenue decimal.Decimal
}

// aggregateSales sums sale outflow and revenue per SKU. Revenue uses the
// price recorded on the sale and falls back to the item's current price.
func aggregateSales(events []domain.TransactionEvent, itemsBySKU map[string]domain.InventoryItem) map[string]*salesTotals {
	totals := make(map[string]*salesTotals)
	for _, ev := range events {
		if ev.Kind != domain.KindSale {
			continue
		}
		qty := absInt(ev.Quantity)

		price := 0.0
		if ev.UnitPrice != nil {
			price = *ev.UnitPrice
		} else if item, ok := itemsBySKU[ev.SKU]; ok {
			price = item.UnitPrice
		}
		if price < 0 || math.IsNaN(price) {
			price = 0
		}

		t, ok := totals[ev.SKU]
		if !ok {
			t = &salesTotals{revenue: decimal.Zero}
			totals[ev.SKU] = t
		}
		t.sold += qty
		t.revenue = t.revenue.Add(decimal.NewFromInt(int64(qty)).Mul(decimal.NewFromFloat(price)))
	}
	return totals
}

// buildSalesEntries joins predictions (the eligible SKU set) with sales totals.
func buildSalesEntries(predictions []domain.Prediction, events []domain.TransactionEvent, items []domain.InventoryItem) []domain.RankedSalesEntry {
	itemsBySKU := indexItems(items)
	totals := aggregateSales(events, itemsBySKU)

	seen := make(map[string]struct{}, len(predictions))
	entries := make([]domain.RankedSalesEntry, 0, len(predictions))
	for _, p := range predictions {
		if _, dup := seen[p.SKU]; dup {
			continue
		}
		seen[p.SKU] = struct{}{}

		entry := domain.RankedSalesEntry{
			ID:           p.ItemID,
			SKU:          p.SKU,
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
		}
		if t, ok := totals[p.SKU]; ok {
			entry.TotalSold = t.sold
			entry.TotalRevenue = t.revenue.Round(2).InexactFloat64()
		}
		entries = append(entries, entry)
	}
	return entries
}

// rankBestSellers orders by units sold, then revenue, then SKU.
func rankBestSellers(entries []domain.RankedSalesEntry, topN int) []domain.RankedSalesEntry {
	sellers := make([]domain.RankedSalesEntry, 0, len(entries))
	for _, e := range entries {
		if e.TotalSold > 0 {
			sellers = append(sellers, e)
		}
	}

	sort.Slice(sellers, func(i, j int) bool {
		a, b := sellers[i], sellers[j]
		if a.TotalSold != b.TotalSold {
			return a.TotalSold > b.TotalSold
		}
		if a.TotalRevenue != b.TotalRevenue {
			return a.TotalRevenue > b.TotalRevenue
		}
		return a.SKU < b.SKU
	})

	return truncate(sellers, topN)
}

// rankSlowMovers orders by units sold ascending, then dead stock descending, then SKU.
func rankSlowMovers(entries []domain.RankedSalesEntry, topN int) []domain.RankedSalesEntry {
	movers := append([]domain.RankedSalesEntry(nil), entries...)

	sort.Slice(movers, func(i, j int) bool {
		a, b := movers[i], movers[j]
		if a.TotalSold != b.TotalSold {
			return a.TotalSold < b.TotalSold
		}
		if a.CurrentStock != b.CurrentStock {
			return a.CurrentStock > b.CurrentStock
		}
		return a.SKU < b.SKU
	})

	return truncate(movers, topN)
}

func truncate(entries []domain.RankedSalesEntry, topN int) []domain.RankedSalesEntry {
	if entries == nil {
		return []domain.RankedSalesEntry{}
	}
	if topN > 0 && len(entries) > topN {
		return entries[:topN]
	}
	return entries
}

func indexItems(items []domain.InventoryItem) map[string]domain.InventoryItem {
	bySKU := make(map[string]domain.InventoryItem, len(items))
	for _, item := range items {
		if _, dup := bySKU[item.SKU]; dup {
			continue
		}
		bySKU[item.SKU] = item
	}
	return bySKU
}
