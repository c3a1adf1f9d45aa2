// Package exporter writes analysis artifacts (CSV tables and Excel
// workbooks) under a single output directory.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"riskcli/internal/timeseries"
)

// Writer exports analysis results as files under a root output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer rooted at dir. The directory is created on
// first write.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// Dir returns the root output directory.
func (w *Writer) Dir() string { return w.dir }

func (w *Writer) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.dir, name)
}

// WriteCSV writes headers and records to name under the output directory.
// A UTF-8 BOM is prepended so Excel opens the file correctly.
func (w *Writer) WriteCSV(name string, headers []string, records [][]string) (string, error) {
	path := w.resolve(name)

	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return "", fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return path, writer.Error()
}

// WriteSummaryCSV writes one row per instrument, with the summary field
// keys as the header.
func (w *Writer) WriteSummaryCSV(name string, series []*timeseries.TimeSeries) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("no instruments to export")
	}

	var headers []string
	for _, field := range series[0].Summary() {
		headers = append(headers, field.Key)
	}

	records := make([][]string, 0, len(series))
	for _, ts := range series {
		record := make([]string, 0, len(headers))
		for _, field := range ts.Summary() {
			record = append(record, field.Value)
		}
		records = append(records, record)
	}

	return w.WriteCSV(name, headers, records)
}

// WriteReturnsCSV writes the instrument's dated log returns.
func (w *Writer) WriteReturnsCSV(name string, ts *timeseries.TimeSeries) (string, error) {
	table := ts.Table()

	records := make([][]string, 0, table.Len())
	for _, row := range table.Rows {
		if !row.HasReturn() {
			continue
		}
		records = append(records, []string{
			row.Date.Format("2006-01-02"),
			fmt.Sprintf("%.6f", row.Close),
			fmt.Sprintf("%.8f", row.LogReturn),
		})
	}

	return w.WriteCSV(name, []string{"Date", "Close", "LogReturn"}, records)
}

// WriteRollingCSV writes the instrument's trailing rolling metrics. Rows
// before the first full window carry empty cells.
func (w *Writer) WriteRollingCSV(name string, ts *timeseries.TimeSeries, window int) (string, error) {
	rolling := ts.RollingMetrics(window)
	table := ts.Table()

	cell := func(v float64) string {
		if math.IsNaN(v) {
			return ""
		}
		return fmt.Sprintf("%.8f", v)
	}

	records := make([][]string, 0, len(rolling.Mean))
	i := 0
	for _, row := range table.Rows {
		if !row.HasReturn() {
			continue
		}
		records = append(records, []string{
			row.Date.Format("2006-01-02"),
			cell(rolling.Mean[i]),
			cell(rolling.Std[i]),
			cell(rolling.Sharpe[i]),
		})
		i++
	}

	return w.WriteCSV(name,
		[]string{"Date", "RollingMean", "RollingStd", "RollingSharpe"}, records)
}
