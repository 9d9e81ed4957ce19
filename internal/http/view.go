package http

import (
	"github.com/shopspring/decimal"

	"finpal/internal/analytics"
	"finpal/internal/core"
	"finpal/internal/loader"
	"finpal/internal/session"
)

// Flash is a one-shot message shown at the top of the page.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

type expenseRow struct {
	Index    int
	Date     string
	Details  string
	Amount   string
	Category string
}

type paymentRow struct {
	Date    string
	Details string
	Amount  string
}

type categoryRow struct {
	Name   string
	Amount string
}

type pageData struct {
	Flash      *Flash
	Categories []string

	HasSession    bool
	FileName      string
	State         string
	Report        loader.Report
	Matched       int
	TotalDebit    string
	TotalCredit   string
	NetCashFlow   string
	TotalPayments string
	Expenses      []expenseRow
	CategoryRows  []categoryRow
	Payments      []paymentRow
}

func newPageData(flash *Flash, categories []string) pageData {
	return pageData{Flash: flash, Categories: categories}
}

// withSession fills the dashboard part of the page. Amounts are formatted
// here and nowhere earlier.
func (p pageData) withSession(sess *session.Session, currency string) pageData {
	sum := sess.Summary()
	money := func(d decimal.Decimal) string { return core.FormatAmount(d, currency) }

	p.HasSession = true
	p.FileName = sess.FileName
	p.State = sess.State().String()
	p.Report = sess.Report()
	p.Matched = sess.Matched()
	p.TotalDebit = money(sum.Totals.Debit)
	p.TotalCredit = money(sum.Totals.Credit)
	p.NetCashFlow = money(sum.Totals.Net)
	p.TotalPayments = money(sum.TotalPayments)

	for _, row := range sess.DebitRows() {
		tx := row.Transaction
		p.Expenses = append(p.Expenses, expenseRow{
			Index:    row.Index,
			Date:     tx.Date.Display(),
			Details:  tx.Details,
			Amount:   money(tx.Amount),
			Category: tx.Category,
		})
	}
	for _, c := range sum.ByCategory {
		p.CategoryRows = append(p.CategoryRows, categoryRow{Name: c.Name, Amount: money(c.Amount)})
	}
	for _, tx := range sess.CreditRows() {
		p.Payments = append(p.Payments, paymentRow{Date: tx.Date.Display(), Details: tx.Details, Amount: money(tx.Amount)})
	}
	return p
}

// JSON shapes of /api/summary. Amounts become floats only here, for charting.

type totalsJSON struct {
	Debit  float64 `json:"debit"`
	Credit float64 `json:"credit"`
	Net    float64 `json:"net"`
}

type nameAmountJSON struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type dateAmountJSON struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type seriesJSON struct {
	Category string    `json:"category"`
	Amounts  []float64 `json:"amounts"`
}

type monthCategoryJSON struct {
	Months []string     `json:"months"`
	Series []seriesJSON `json:"series"`
}

type summaryJSON struct {
	Currency      string            `json:"currency"`
	Totals        totalsJSON        `json:"totals"`
	ByCategory    []nameAmountJSON  `json:"by_category"`
	TopMerchants  []nameAmountJSON  `json:"top_merchants"`
	DailyDebits   []dateAmountJSON  `json:"daily_debits"`
	DailyCredits  []dateAmountJSON  `json:"daily_credits"`
	MonthCategory monthCategoryJSON `json:"month_category"`
	TotalPayments float64           `json:"total_payments"`
}

func newSummaryJSON(sum analytics.Summary, currency string) summaryJSON {
	out := summaryJSON{
		Currency: currency,
		Totals: totalsJSON{
			Debit:  sum.Totals.Debit.InexactFloat64(),
			Credit: sum.Totals.Credit.InexactFloat64(),
			Net:    sum.Totals.Net.InexactFloat64(),
		},
		ByCategory:    make([]nameAmountJSON, 0, len(sum.ByCategory)),
		TopMerchants:  make([]nameAmountJSON, 0, len(sum.TopMerchants)),
		DailyDebits:   dateSeries(sum.DailyDebits),
		DailyCredits:  dateSeries(sum.DailyCredits),
		TotalPayments: sum.TotalPayments.InexactFloat64(),
		MonthCategory: monthCategoryJSON{
			Months: append([]string{}, sum.MonthCategory.Months...),
			Series: make([]seriesJSON, 0, len(sum.MonthCategory.Categories)),
		},
	}
	for _, c := range sum.ByCategory {
		out.ByCategory = append(out.ByCategory, nameAmountJSON{Name: c.Name, Amount: c.Amount.InexactFloat64()})
	}
	for _, m := range sum.TopMerchants {
		out.TopMerchants = append(out.TopMerchants, nameAmountJSON{Name: m.Details, Amount: m.Amount.InexactFloat64()})
	}
	for _, cat := range sum.MonthCategory.Categories {
		s := seriesJSON{Category: cat, Amounts: make([]float64, len(sum.MonthCategory.Months))}
		for i, month := range sum.MonthCategory.Months {
			s.Amounts[i] = sum.MonthCategory.Amount(month, cat).InexactFloat64()
		}
		out.MonthCategory.Series = append(out.MonthCategory.Series, s)
	}
	return out
}

func dateSeries(in []core.DateAmount) []dateAmountJSON {
	out := make([]dateAmountJSON, len(in))
	for i, d := range in {
		out[i] = dateAmountJSON{Date: d.Date.ISO(), Amount: d.Amount.InexactFloat64()}
	}
	return out
}
