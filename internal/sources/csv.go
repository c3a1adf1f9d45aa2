package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"riskcli/internal/errors"
	"riskcli/internal/pricetable"
)

// CSVSource reads per-ticker OHLCV history from CSV files in a directory.
// Each instrument lives in <dir>/<TICKER>.csv with a canonical header row.
type CSVSource struct {
	dir string
}

// NewCSVSource creates a source rooted at the given directory.
func NewCSVSource(dir string) (*CSVSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("CSV directory %s", dir), err)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError(fmt.Sprintf("%s is not a directory", dir), nil)
	}
	return &CSVSource{dir: dir}, nil
}

// Name implements Source.
func (s *CSVSource) Name() string { return "Local CSV" }

// Fetch implements Source. Rows outside [from, to] are filtered out;
// rows whose dates fail to parse are kept raw for the pipeline's validator
// to report.
func (s *CSVSource) Fetch(ctx context.Context, ticker string, from, to time.Time) (pricetable.Table, error) {
	path := filepath.Join(s.dir, ticker+".csv")

	file, err := os.Open(path)
	if err != nil {
		return pricetable.Table{}, errors.NewNotFoundError(
			fmt.Sprintf("no CSV file for ticker %s", ticker), err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return pricetable.Table{}, errors.NewParsingError(
			fmt.Sprintf("read CSV for ticker %s", ticker), err)
	}
	if len(records) < 2 {
		return pricetable.Table{}, errors.NewValidationError(
			fmt.Sprintf("CSV for ticker %s has no data rows", ticker), nil)
	}

	header := records[0]
	columnIndex := make(map[string]int, len(header))
	var columns []string
	for i, name := range header {
		name = strings.TrimSpace(name)
		for _, canonical := range pricetable.CanonicalColumns {
			if strings.EqualFold(name, canonical) {
				columnIndex[canonical] = i
				columns = append(columns, canonical)
			}
		}
	}

	table := pricetable.NewTable(columns...)

	for _, record := range records[1:] {
		select {
		case <-ctx.Done():
			return pricetable.Table{}, ctx.Err()
		default:
		}

		row := pricetable.NewRow()

		if idx, ok := columnIndex[pricetable.ColDate]; ok && idx < len(record) {
			text := strings.TrimSpace(record[idx])
			if parsed, err := time.Parse(DateFormat, text); err == nil {
				row.Date = parsed
			} else {
				row.DateText = text
			}
		}

		setField := func(column string, dst *float64) {
			idx, ok := columnIndex[column]
			if !ok || idx >= len(record) {
				return
			}
			text := strings.TrimSpace(record[idx])
			if text == "" {
				*dst = math.NaN()
				return
			}
			if v, err := strconv.ParseFloat(text, 64); err == nil {
				*dst = v
			} else {
				*dst = math.NaN()
			}
		}
		setField(pricetable.ColOpen, &row.Open)
		setField(pricetable.ColHigh, &row.High)
		setField(pricetable.ColLow, &row.Low)
		setField(pricetable.ColClose, &row.Close)
		setField(pricetable.ColVolume, &row.Volume)

		// Range-filter parsed dates only; unparseable rows surface in validation.
		if !row.Date.IsZero() {
			if row.Date.Before(from) || row.Date.After(to) {
				continue
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return pricetable.Table{}, errors.NewNotFoundError(
			fmt.Sprintf("no rows for ticker %s between %s and %s",
				ticker, from.Format(DateFormat), to.Format(DateFormat)), nil)
	}
	return table, nil
}
