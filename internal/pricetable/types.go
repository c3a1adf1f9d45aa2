package pricetable

import (
	"math"
	"time"
)

// Canonical column names of the accepted input schema.
// Any vendor-specific schema must be mapped to these names before the table
// reaches the pipeline.
const (
	ColDate   = "Date"
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
)

// CanonicalColumns lists the full accepted schema in order.
var CanonicalColumns = []string{ColDate, ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// Row is a single observation of an instrument's trading day.
// Missing numeric values are represented as NaN. LogReturn is NaN until
// derived, and stays NaN for the first row of a series.
type Row struct {
	Date      time.Time
	DateText  string // raw date value when the source did not parse it
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	LogReturn float64
}

// NewRow returns a row with every numeric field marked missing.
func NewRow() Row {
	nan := math.NaN()
	return Row{Open: nan, High: nan, Low: nan, Close: nan, Volume: nan, LogReturn: nan}
}

// HasReturn reports whether the row carries a derived log-return.
func (r Row) HasReturn() bool {
	return !math.IsNaN(r.LogReturn)
}

// Table is an ordered price table. Columns records which canonical columns
// the source actually provided; fields of absent columns are ignored by the
// pipeline.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table carrying the given canonical columns.
func NewTable(columns ...string) Table {
	if len(columns) == 0 {
		columns = append([]string(nil), CanonicalColumns...)
	}
	return Table{Columns: columns}
}

// HasColumn reports whether the table carries the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    append([]Row(nil), t.Rows...),
	}
	return out
}

// StartDate returns the date of the first row, or the zero time for an empty table.
func (t Table) StartDate() time.Time {
	if len(t.Rows) == 0 {
		return time.Time{}
	}
	return t.Rows[0].Date
}

// EndDate returns the date of the last row, or the zero time for an empty table.
func (t Table) EndDate() time.Time {
	if len(t.Rows) == 0 {
		return time.Time{}
	}
	return t.Rows[len(t.Rows)-1].Date
}

// Closes returns the Close column as a slice.
func (t Table) Closes() []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Close
	}
	return out
}

// Dates returns the Date column as a slice.
func (t Table) Dates() []time.Time {
	out := make([]time.Time, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Date
	}
	return out
}

// ValidReturns returns every defined log-return in row order.
func (t Table) ValidReturns() []float64 {
	out := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.HasReturn() {
			out = append(out, r.LogReturn)
		}
	}
	return out
}

// numericField maps a canonical column name to its storage in a Row.
// Fill and drop operations iterate these instead of hard-coding fields.
type numericField struct {
	name string
	get  func(*Row) *float64
}

var numericFields = []numericField{
	{ColOpen, func(r *Row) *float64 { return &r.Open }},
	{ColHigh, func(r *Row) *float64 { return &r.High }},
	{ColLow, func(r *Row) *float64 { return &r.Low }},
	{ColClose, func(r *Row) *float64 { return &r.Close }},
	{ColVolume, func(r *Row) *float64 { return &r.Volume }},
}

// presentNumericFields returns the numeric fields backed by a column the
// table actually carries.
func (t Table) presentNumericFields() []numericField {
	fields := make([]numericField, 0, len(numericFields))
	for _, f := range numericFields {
		if t.HasColumn(f.name) {
			fields = append(fields, f)
		}
	}
	return fields
}
