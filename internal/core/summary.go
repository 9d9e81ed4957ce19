package core

import "github.com/shopspring/decimal"

// Totals holds the headline metrics of a transaction set.
type Totals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
	Net    decimal.Decimal // Credit - Debit
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// MerchantAmount is the total spent at one Details value.
type MerchantAmount struct {
	Details string
	Amount  decimal.Decimal
}

// DateAmount is the total for one calendar day.
type DateAmount struct {
	Date   Date
	Amount decimal.Decimal
}

// MonthCategoryAmount is one cell of the month x category stacked view.
type MonthCategoryAmount struct {
	Month    string // 2006-01
	Category string
	Amount   decimal.Decimal
}
