package analytics

import (
	"github.com/shopspring/decimal"

	"finpal/internal/core"
)

// Summary bundles every view the dashboard renders for one transaction set.
type Summary struct {
	Totals        core.Totals
	ByCategory    []core.CategoryAmount // debits only
	TopMerchants  []core.MerchantAmount // debits only
	DailyDebits   []core.DateAmount
	DailyCredits  []core.DateAmount
	MonthCategory MonthCategory // debits only
	TotalPayments decimal.Decimal
}

// Summarize computes the dashboard views. Expense views use the Debit subset,
// payment views the Credit subset.
func Summarize(set core.TransactionSet) Summary {
	debits, credits := set.Debits(), set.Credits()
	return Summary{
		Totals:        ComputeTotals(set.All),
		ByCategory:    ByCategory(debits),
		TopMerchants:  TopMerchants(debits, TopMerchantsLimit),
		DailyDebits:   ByDate(debits),
		DailyCredits:  ByDate(credits),
		MonthCategory: ByMonthCategory(debits),
		TotalPayments: Sum(credits),
	}
}
