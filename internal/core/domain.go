package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Uncategorized is the fallback category. It always exists and is never
// matched against.
const Uncategorized = "Uncategorized"

const (
	Debit  Flow = "Debit"
	Credit Flow = "Credit"
)

// StatementDateLayout is the bank export date format, e.g. "05 Jan 2024".
const StatementDateLayout = "2 Jan 2006"

type (
	// Flow tells whether money left (Debit) or entered (Credit) the account.
	Flow string

	Date struct {
		time.Time
	}

	Transaction struct {
		Date     Date
		Details  string
		Amount   decimal.Decimal // non-negative; the sign lives in Flow
		Flow     Flow
		Category string
	}

	// TransactionSet is every transaction of one uploaded file.
	TransactionSet struct {
		All []Transaction
	}
)

var (
	ErrInvalidFlow = errors.New("invalid debit/credit value")
	ErrInvalidDate = errors.New("invalid statement date")
)

// ParseFlow accepts the literal strings "Debit" and "Credit".
func ParseFlow(s string) (Flow, error) {
	switch f := Flow(strings.TrimSpace(s)); f {
	case Debit, Credit:
		return f, nil
	default:
		return "", ErrInvalidFlow
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseStatementDate parses "day month-abbrev year" dates.
func ParseStatementDate(s string) (Date, error) {
	t, err := time.Parse(StatementDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// YearMonth returns the "2006-01" period the date falls in.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

// ISO returns the date as "2006-01-02".
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Display returns the date as shown in the grids, "02/01/2006".
func (d Date) Display() string {
	return d.Format("02/01/2006")
}

// NewTransactionSet wraps txs without copying.
func NewTransactionSet(txs []Transaction) TransactionSet {
	return TransactionSet{All: txs}
}

// Indices returns the positions in All of transactions with the given flow.
func (s TransactionSet) Indices(flow Flow) []int {
	var out []int
	for i, t := range s.All {
		if t.Flow == flow {
			out = append(out, i)
		}
	}
	return out
}

// Debits returns a copy of the Debit subset.
func (s TransactionSet) Debits() []Transaction {
	return s.filter(Debit)
}

// Credits returns a copy of the Credit subset.
func (s TransactionSet) Credits() []Transaction {
	return s.filter(Credit)
}

func (s TransactionSet) filter(flow Flow) []Transaction {
	out := make([]Transaction, 0, len(s.All))
	for _, t := range s.All {
		if t.Flow == flow {
			out = append(out, t)
		}
	}
	return out
}
