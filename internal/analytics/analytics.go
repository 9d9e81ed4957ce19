// Package analytics computes the dashboard aggregates. Every function is pure
// and keeps full decimal precision.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"finpal/internal/core"
)

// TopMerchantsLimit is how many merchants the dashboard bar chart shows.
const TopMerchantsLimit = 10

// ComputeTotals sums amounts per flow. Net is Credit minus Debit.
func ComputeTotals(txs []core.Transaction) core.Totals {
	t := core.Totals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, tx := range txs {
		switch tx.Flow {
		case core.Debit:
			t.Debit = t.Debit.Add(tx.Amount)
		case core.Credit:
			t.Credit = t.Credit.Add(tx.Amount)
		}
	}
	t.Net = t.Credit.Sub(t.Debit)
	return t
}

// Sum adds every amount regardless of flow.
func Sum(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// ByCategory sums amounts per category, largest first. Equal amounts are
// ordered by name.
func ByCategory(txs []core.Transaction) []core.CategoryAmount {
	keys, sums := groupBy(txs, func(tx core.Transaction) string { return tx.Category })
	out := make([]core.CategoryAmount, len(keys))
	for i, k := range keys {
		out[i] = core.CategoryAmount{Name: k, Amount: sums[k]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopMerchants sums amounts per Details value, largest first, keeping at
// most n entries. n <= 0 keeps all.
func TopMerchants(txs []core.Transaction, n int) []core.MerchantAmount {
	keys, sums := groupBy(txs, func(tx core.Transaction) string { return tx.Details })
	out := make([]core.MerchantAmount, len(keys))
	for i, k := range keys {
		out[i] = core.MerchantAmount{Details: k, Amount: sums[k]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Details < out[j].Details
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ByDate sums amounts per calendar day, oldest first.
func ByDate(txs []core.Transaction) []core.DateAmount {
	sums := make(map[core.Date]decimal.Decimal)
	for _, tx := range txs {
		if cur, ok := sums[tx.Date]; ok {
			sums[tx.Date] = cur.Add(tx.Amount)
		} else {
			sums[tx.Date] = tx.Amount
		}
	}
	out := make([]core.DateAmount, 0, len(sums))
	for d, amt := range sums {
		out = append(out, core.DateAmount{Date: d, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}

// MonthCategory is the stacked month x category view with its axes.
type MonthCategory struct {
	Months     []string // ascending, "2006-01"
	Categories []string // first-seen order
	Cells      []core.MonthCategoryAmount
}

// Amount returns the cell for (month, category), zero if absent.
func (mc MonthCategory) Amount(month, category string) decimal.Decimal {
	for _, c := range mc.Cells {
		if c.Month == month && c.Category == category {
			return c.Amount
		}
	}
	return decimal.Zero
}

// ByMonthCategory sums amounts per (year-month, category). Cells are ordered
// by month, then by the order categories first appear in txs.
func ByMonthCategory(txs []core.Transaction) MonthCategory {
	type key struct{ month, category string }
	sums := make(map[key]decimal.Decimal)
	catPos := make(map[string]int)
	var mc MonthCategory
	months := make(map[string]struct{})

	for _, tx := range txs {
		k := key{tx.Date.YearMonth(), tx.Category}
		if cur, ok := sums[k]; ok {
			sums[k] = cur.Add(tx.Amount)
		} else {
			sums[k] = tx.Amount
		}
		if _, ok := catPos[tx.Category]; !ok {
			catPos[tx.Category] = len(mc.Categories)
			mc.Categories = append(mc.Categories, tx.Category)
		}
		if _, ok := months[k.month]; !ok {
			months[k.month] = struct{}{}
			mc.Months = append(mc.Months, k.month)
		}
	}
	sort.Strings(mc.Months)

	for k, amt := range sums {
		mc.Cells = append(mc.Cells, core.MonthCategoryAmount{Month: k.month, Category: k.category, Amount: amt})
	}
	sort.Slice(mc.Cells, func(i, j int) bool {
		if mc.Cells[i].Month != mc.Cells[j].Month {
			return mc.Cells[i].Month < mc.Cells[j].Month
		}
		return catPos[mc.Cells[i].Category] < catPos[mc.Cells[j].Category]
	})
	return mc
}

// groupBy sums amounts by key, returning keys in first-seen order.
func groupBy(txs []core.Transaction, keyOf func(core.Transaction) string) ([]string, map[string]decimal.Decimal) {
	var keys []string
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		k := keyOf(tx)
		if cur, ok := sums[k]; ok {
			sums[k] = cur.Add(tx.Amount)
			continue
		}
		keys = append(keys, k)
		sums[k] = tx.Amount
	}
	return keys, sums
}
