package bill

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/payday/internal/encoding"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

// Column headers of a bill import file. due_day may be omitted.
const (
	ColName            = "name"
	ColExpectedAmount  = "expected_amount"
	ColPayingAccountID = "paying_account_id"
	ColDueDay          = "due_day"
)

var requiredCols = []string{ColName, ColExpectedAmount, ColPayingAccountID}

// ParseCSV reads a semicolon separated bill list. The first non-empty row must
// be the header; column order is free. Any malformed row fails the whole file.
func ParseCSV(r io.Reader) ([]CreateParams, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %w", ErrInvalid, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalid)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(cell))] = i
	}

	for _, name := range requiredCols {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalid, name)
		}
	}

	params := make([]CreateParams, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rowNum := i + 2

		p, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrInvalid, rowNum, err)
		}

		params = append(params, p)
	}

	if len(params) == 0 {
		return nil, fmt.Errorf("%w: no bills in file", ErrInvalid)
	}

	return params, nil
}

func parseRow(row []string, cols map[string]int) (CreateParams, error) {
	var p CreateParams

	p.Name = cell(row, cols[ColName])
	if p.Name == "" {
		return p, fmt.Errorf("missing name")
	}

	amount, err := money.ParseAmount(cell(row, cols[ColExpectedAmount]))
	if err != nil {
		return p, err
	}

	p.ExpectedAmount = amount

	accountID, err := strconv.ParseInt(cell(row, cols[ColPayingAccountID]), 10, 64)
	if err != nil {
		return p, fmt.Errorf("paying account id %q is not a number", cell(row, cols[ColPayingAccountID]))
	}

	p.PayingAccountID = accountID

	if idx, ok := cols[ColDueDay]; ok {
		if s := cell(row, idx); s != "" {
			day, err := strconv.Atoi(s)
			if err != nil {
				return p, fmt.Errorf("due day %q is not a number", s)
			}

			p.DueDay = &day
		}
	}

	return p, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
