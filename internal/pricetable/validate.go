package pricetable

import (
	"fmt"
	"math"
	"time"

	"riskcli/internal/errors"
)

// MinRows is the minimum number of observations required for analysis.
const MinRows = 30

// dateLayouts are the accepted textual date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// Validate checks the structural requirements of a raw table: non-empty,
// Date and Close columns present, at least MinRows rows, and every date
// either already typed or coercible from text. Textual dates are coerced in
// place; coercion failure is a validation error.
func Validate(t *Table) error {
	if t == nil || len(t.Rows) == 0 {
		return errors.NewValidationError("price table is empty", nil)
	}

	if !t.HasColumn(ColDate) {
		return errors.NewValidationError("required column Date is missing", nil)
	}

	if !t.HasColumn(ColClose) {
		return errors.NewValidationError("required column Close is missing", nil)
	}

	if len(t.Rows) < MinRows {
		return errors.NewValidationError(
			fmt.Sprintf("insufficient rows: %d < %d", len(t.Rows), MinRows), nil).
			WithContext("rows", len(t.Rows))
	}

	for i := range t.Rows {
		row := &t.Rows[i]

		// Missing closes (NaN) are left for the repair stage; a present but
		// non-positive close has no defined log-return and marks corrupt data.
		if !math.IsNaN(row.Close) && row.Close <= 0 {
			return errors.NewValidationError(
				fmt.Sprintf("non-positive close %g at row %d", row.Close, i), nil).
				WithContext("row", i)
		}

		if !row.Date.IsZero() {
			continue
		}
		parsed, err := parseDate(row.DateText)
		if err != nil {
			return errors.NewValidationError(
				fmt.Sprintf("unparseable date at row %d: %q", i, row.DateText), err).
				WithContext("row", i)
		}
		row.Date = parsed
	}

	return nil
}

// parseDate coerces a textual date value to a time.Time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", s)
}
