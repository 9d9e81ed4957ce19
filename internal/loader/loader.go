// Package loader parses bank-statement CSV exports into transactions.
//
// Required columns are Details, Amount, Date and Debit/Credit, matched after
// trimming, case-sensitively and in any order. An unparsable Amount rejects
// the whole file; rows with an unparsable Date or an unknown Debit/Credit value
// are dropped and counted in the Report.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"finpal/internal/core"
)

const (
	ColDetails = "Details"
	ColAmount  = "Amount"
	ColDate    = "Date"
	ColFlow    = "Debit/Credit"
)

var requiredColumns = []string{ColDetails, ColAmount, ColDate, ColFlow}

// Report summarizes what happened to the input rows.
type Report struct {
	Rows         int // data rows read, header excluded
	Kept         int
	DroppedDates int
	DroppedFlows int
}

// Dropped is the number of rows that were read but not kept.
func (r Report) Dropped() int {
	return r.DroppedDates + r.DroppedFlows
}

// Result is a successful load. Categories are left empty.
type Result struct {
	Transactions []core.Transaction
	Report       Report
}

type row struct {
	n      int
	fields []string
}

// Parse reads the whole CSV stream. On error no partial result is returned and
// the error is a *core.ParseError.
func Parse(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Bank descriptions carry stray quotes, e.g. AMAZON "PRIME" MEMBERSHIP.
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, &core.ParseError{Err: core.ErrEmptyFile}
	}
	if err != nil {
		return Result{}, &core.ParseError{Err: fmt.Errorf("read header: %w", err)}
	}

	cols, err := headerMap(header)
	if err != nil {
		return Result{}, err
	}

	var rows []row
	for n := 1; ; n++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, &core.ParseError{Row: n, Err: err}
		}
		rows = append(rows, row{n: n, fields: fields})
	}

	// Amount is converted for every row before anything is dropped, so a bad
	// amount fails the load even on a row whose date would be discarded.
	parsed := make([]core.Transaction, len(rows))
	for i, rw := range rows {
		raw := field(rw.fields, cols[ColAmount])
		amt, err := core.ParseAmount(raw)
		if err != nil {
			return Result{}, &core.ParseError{Row: rw.n, Column: ColAmount, Value: raw, Err: err}
		}
		parsed[i].Amount = amt
	}

	res := Result{Report: Report{Rows: len(rows)}}
	for i, rw := range rows {
		date, err := core.ParseStatementDate(field(rw.fields, cols[ColDate]))
		if err != nil {
			res.Report.DroppedDates++
			continue
		}
		flow, err := core.ParseFlow(field(rw.fields, cols[ColFlow]))
		if err != nil {
			res.Report.DroppedFlows++
			continue
		}
		tx := parsed[i]
		tx.Date = date
		tx.Details = field(rw.fields, cols[ColDetails])
		tx.Flow = flow
		tx.Category = core.Uncategorized
		res.Transactions = append(res.Transactions, tx)
	}
	res.Report.Kept = len(res.Transactions)
	return res, nil
}

// headerMap maps trimmed column names to their index.
func headerMap(header []string) (map[string]int, error) {
	m := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if _, dup := m[h]; !dup {
			m[h] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := m[c]; !ok {
			return nil, &core.ParseError{Column: c, Err: core.ErrMissingColumn}
		}
	}
	return m, nil
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
