package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"riskcli/internal/portfolio"
	"riskcli/internal/simulation"
	"riskcli/internal/timeseries"
)

// WriteWorkbook writes a multi-sheet Excel workbook: a Summary sheet with
// one row per instrument, and, when a portfolio and simulation result are
// supplied, Covariance and Simulation sheets.
func (w *Writer) WriteWorkbook(name string, series []*timeseries.TimeSeries, p *portfolio.Portfolio, result *simulation.PortfolioResult) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("no instruments to export")
	}

	path := w.resolve(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSummarySheet(f, series); err != nil {
		return "", err
	}

	if p != nil {
		if err := writeCovarianceSheet(f, p); err != nil {
			return "", err
		}
	}
	if result != nil {
		if err := writeSimulationSheet(f, result); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("wrote Excel workbook",
		slog.String("path", path),
		slog.Int("instruments", len(series)))
	return path, nil
}

func writeSummarySheet(f *excelize.File, series []*timeseries.TimeSeries) error {
	for col, field := range series[0].Summary() {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue("Summary", cell, field.Key); err != nil {
			return err
		}
	}
	for row, ts := range series {
		for col, field := range ts.Summary() {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue("Summary", cell, field.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeCovarianceSheet(f *excelize.File, p *portfolio.Portfolio) error {
	const sheet = "Covariance"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	tickers := p.Tickers()
	cov := p.Covariance()

	for i, ticker := range tickers {
		head, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, head, ticker); err != nil {
			return err
		}
		side, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, side, ticker); err != nil {
			return err
		}
	}

	for i := range tickers {
		for j := range tickers {
			cell, err := excelize.CoordinatesToCellName(j+2, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cov.At(i, j)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSimulationSheet(f *excelize.File, result *simulation.PortfolioResult) error {
	const sheet = "Simulation"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][2]interface{}{
		{"Paths", result.NumPaths},
		{"Horizon (days)", result.Horizon},
		{"Initial Value", result.InitialValue},
		{"Mean Final Value", result.MeanFinalValue},
		{"5th Percentile", result.Percentile5},
		{"95th Percentile", result.Percentile95},
		{fmt.Sprintf("VaR %.0f%%", result.Confidence*100), result.VaR},
		{fmt.Sprintf("VaR %.0f%% Loss", result.Confidence*100), result.VaRLoss},
	}
	for i, row := range rows {
		keyCell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, keyCell, row[0]); err != nil {
			return err
		}
		valCell, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, valCell, row[1]); err != nil {
			return err
		}
	}
	return nil
}
