// Command risk-report runs the full portfolio analysis pipeline: it loads
// a portfolio definition, extracts and cleans price history, computes the
// portfolio statistics, runs the Monte Carlo projection, and writes the
// Markdown report, charts, and export files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"riskcli/internal/config"
	"riskcli/internal/exporter"
	"riskcli/internal/extract"
	"riskcli/internal/report"
	"riskcli/internal/simulation"
	"riskcli/internal/sources"
)

func main() {
	configPath := flag.String("config", "", "path to the application config YAML (optional)")
	portfolioPath := flag.String("portfolio", "", "path to the portfolio definition YAML (required)")
	outputDir := flag.String("out", "", "output directory override")
	flag.Parse()

	if *portfolioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: risk-report -portfolio portfolio.yaml [-config config.yaml] [-out dir]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	setupLogger(cfg.Logging)
	ctx := context.Background()

	spec, err := config.LoadPortfolioSpec(*portfolioPath)
	if err != nil {
		slog.Error("Failed to load portfolio definition", "error", err)
		os.Exit(1)
	}
	from, to, err := spec.Window()
	if err != nil {
		slog.Error("Failed to parse analysis window", "error", err)
		os.Exit(1)
	}

	source, err := buildSource(spec, cfg)
	if err != nil {
		slog.Error("Failed to initialize data source", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting portfolio analysis",
		"portfolio", spec.Name,
		"source", source.Name(),
		"holdings", len(spec.Holdings),
		"from", spec.From,
		"to", spec.To)

	ex := extract.New(source, slog.Default())
	p, warnings, err := ex.BuildPortfolio(ctx, spec.Weights(), from, to)
	if err != nil {
		slog.Error("Failed to build portfolio", "error", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		slog.Warn("Portfolio warning", "kind", string(w.Kind), "detail", w.Detail)
	}

	engine, err := simulation.NewEngine(simulation.Params{
		NumPaths: cfg.Simulation.NumPaths,
		Horizon:  cfg.Simulation.Horizon,
		Dt:       1.0,
		Seed:     cfg.Simulation.Seed,
		Workers:  cfg.Simulation.Workers,
	}, slog.Default())
	if err != nil {
		slog.Error("Failed to create simulation engine", "error", err)
		os.Exit(1)
	}

	result, err := engine.SimulatePortfolio(ctx, p, cfg.Simulation.Confidence)
	if err != nil {
		slog.Error("Monte Carlo simulation failed", "error", err)
		os.Exit(1)
	}

	// Markdown report
	r := report.NewGenerator(slog.Default()).
		WithRates(cfg.Analysis.RiskFreeRate, cfg.Analysis.PeriodsPerYear).
		Build(p, result)
	reportPath := filepath.Join(cfg.Output.Dir, "portfolio_report.md")
	if err := r.Save(reportPath); err != nil {
		slog.Error("Failed to write report", "error", err)
		os.Exit(1)
	}
	slog.Info("Wrote report", "path", reportPath, "report_id", r.ID)

	// Charts
	chartsDir := cfg.Output.ChartsDir
	if !filepath.IsAbs(chartsDir) {
		chartsDir = filepath.Join(cfg.Output.Dir, chartsDir)
	}
	chartPaths, err := report.SaveCharts(chartsDir, p, result)
	if err != nil {
		slog.Error("Failed to render charts", "error", err)
		os.Exit(1)
	}
	for _, path := range chartPaths {
		slog.Info("Wrote chart", "path", path)
	}

	// Tabular exports
	w := exporter.NewWriter(cfg.Output.Dir, slog.Default())
	if _, err := w.WriteSummaryCSV("summary.csv", p.Components()); err != nil {
		slog.Error("Failed to write summary CSV", "error", err)
		os.Exit(1)
	}
	for _, ts := range p.Components() {
		name := fmt.Sprintf("rolling_%s.csv", ts.Ticker())
		if _, err := w.WriteRollingCSV(name, ts, cfg.Analysis.RollingWindow); err != nil {
			slog.Error("Failed to write rolling metrics CSV", "ticker", ts.Ticker(), "error", err)
			os.Exit(1)
		}
	}
	xlsxPath, err := w.WriteWorkbook("analysis.xlsx", p.Components(), p, result)
	if err != nil {
		slog.Error("Failed to write Excel workbook", "error", err)
		os.Exit(1)
	}
	slog.Info("Wrote Excel workbook", "path", xlsxPath)

	slog.Info("Analysis complete",
		"initial_value", result.InitialValue,
		"mean_final_value", result.MeanFinalValue,
		"var", result.VaR,
		"var_loss", result.VaRLoss)
}

// buildSource maps the portfolio definition's source name to a concrete
// data source.
func buildSource(spec *config.PortfolioSpec, cfg *config.Config) (sources.Source, error) {
	switch spec.Source {
	case "csv":
		return sources.NewCSVSource(spec.CSVDir)
	case "synthetic":
		return sources.NewSyntheticSource(cfg.Simulation.Seed), nil
	default:
		return nil, fmt.Errorf("unknown source %q", spec.Source)
	}
}

// setupLogger installs the configured slog handler as the default.
func setupLogger(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
