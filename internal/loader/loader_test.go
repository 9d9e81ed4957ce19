package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finpal/internal/core"
)

func TestParseStatement(t *testing.T) {
	in := "Date,Details,Amount,Debit/Credit\n" +
		"01 Jan 2024,Coffee Shop,4.50,Debit\n" +
		"01 Jan 2024,Employer,\"2,000.00\",Credit\n"

	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)

	first := res.Transactions[0]
	assert.Equal(t, core.NewDate(2024, 1, 1), first.Date)
	assert.Equal(t, "Coffee Shop", first.Details)
	assert.True(t, decimal.RequireFromString("4.50").Equal(first.Amount))
	assert.Equal(t, core.Debit, first.Flow)
	assert.Equal(t, core.Uncategorized, first.Category)

	assert.True(t, decimal.RequireFromString("2000").Equal(res.Transactions[1].Amount))
	assert.Equal(t, core.Credit, res.Transactions[1].Flow)
	assert.Equal(t, Report{Rows: 2, Kept: 2}, res.Report)
}

func TestParseTrimsHeadersAndIgnoresExtraColumns(t *testing.T) {
	in := "\ufeff Details , Balance, Amount ,Date,Debit/Credit \n" +
		"Rent,100,\"1,234.50\",05 Jan 2024,Debit\n"

	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Rent", res.Transactions[0].Details)
	assert.True(t, decimal.RequireFromString("1234.50").Equal(res.Transactions[0].Amount))
}

func TestParseDropsBadDatesAndFlows(t *testing.T) {
	in := "Details,Amount,Date,Debit/Credit\n" +
		"A,1,05 Jan 2024,Debit\n" +
		"B,2,2024-01-05,Debit\n" +
		"C,3,,Credit\n" +
		"D,4,06 Jan 2024,Transfer\n" +
		"E,5,7 Feb 2024,Credit\n"

	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	var details []string
	for _, tx := range res.Transactions {
		details = append(details, tx.Details)
	}
	assert.Equal(t, []string{"A", "E"}, details)
	assert.Equal(t, Report{Rows: 5, Kept: 2, DroppedDates: 2, DroppedFlows: 1}, res.Report)
	assert.Equal(t, 3, res.Report.Dropped())
}

func TestParseBadAmountFailsWholeFile(t *testing.T) {
	in := "Details,Amount,Date,Debit/Credit\n" +
		"A,1.00,05 Jan 2024,Debit\n" +
		"B,abc,not a date,Debit\n"

	res, err := Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.Empty(t, res.Transactions)

	var pe *core.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Row)
	assert.Equal(t, ColAmount, pe.Column)
	assert.Equal(t, "abc", pe.Value)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestParseMissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("Details,amount,Date,Debit/Credit\nA,1,05 Jan 2024,Debit\n"))

	var pe *core.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ColAmount, pe.Column)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestParseStructuralErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, core.ErrEmptyFile)

	readErr := errors.New("connection reset")
	_, err = Parse(failingReader{err: readErr})
	var pe *core.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, readErr)
}

func TestParseKeepsInnerQuotes(t *testing.T) {
	in := "Details,Amount,Date,Debit/Credit\n" +
		"AMAZON \"PRIME\" MEMBERSHIP,14.99,05 Jan 2024,Debit\n" +
		"Coffee Shop,4.50,01 Jan 2024,Debit\n"

	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, `AMAZON "PRIME" MEMBERSHIP`, res.Transactions[0].Details)
	assert.True(t, decimal.RequireFromString("14.99").Equal(res.Transactions[0].Amount))
	assert.Equal(t, "Coffee Shop", res.Transactions[1].Details)
	assert.Equal(t, 2, res.Report.Kept)
}

func TestParseShortRowFailsOnAmount(t *testing.T) {
	_, err := Parse(strings.NewReader("Details,Date,Debit/Credit,Amount\nA,05 Jan 2024,Debit\n"))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}
