// Package report renders portfolio analysis results as Markdown documents
// and chart images.
package report

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"riskcli/internal/portfolio"
	"riskcli/internal/simulation"
	"riskcli/internal/timeseries"
)

// Advisory thresholds: instruments with under a year of history, weights
// above half the portfolio, and annualized volatility above 40% all get
// flagged.
const (
	minHistoryDays        = 365
	concentratedWeight    = 0.5
	highAnnualVolatility  = 0.4
	favorableSharpe       = 1.0
	reportTimestampFormat = "2006-01-02 15:04:05"
)

// AdvisoryKind classifies a risk advisory raised by the report.
type AdvisoryKind string

const (
	AdvisoryShortHistory       AdvisoryKind = "SHORT_HISTORY"
	AdvisoryConcentratedWeight AdvisoryKind = "CONCENTRATED_WEIGHT"
	AdvisoryHighVolatility     AdvisoryKind = "HIGH_VOLATILITY"
)

// Advisory is one flagged risk consideration. Ticker is empty for
// portfolio-level advisories.
type Advisory struct {
	Kind   AdvisoryKind
	Ticker string
	Detail string
}

// Report is a generated portfolio analysis document.
type Report struct {
	ID         string
	Generated  time.Time
	Advisories []Advisory

	portfolio      *portfolio.Portfolio
	simulation     *simulation.PortfolioResult
	riskFreeRate   float64
	periodsPerYear int
}

// Generator builds portfolio reports. The clock is injectable for tests.
type Generator struct {
	logger         *slog.Logger
	now            func() time.Time
	riskFreeRate   float64
	periodsPerYear int
}

// NewGenerator creates a report generator with the default risk-free rate
// and trading calendar.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		logger:         logger,
		now:            time.Now,
		riskFreeRate:   timeseries.DefaultRiskFreeRate,
		periodsPerYear: timeseries.DefaultPeriodsPerYear,
	}
}

// WithRates overrides the risk-free rate and annualization period count.
func (g *Generator) WithRates(riskFreeRate float64, periodsPerYear int) *Generator {
	g.riskFreeRate = riskFreeRate
	g.periodsPerYear = periodsPerYear
	return g
}

// Build assembles the report from a portfolio and its Monte Carlo result.
func (g *Generator) Build(p *portfolio.Portfolio, result *simulation.PortfolioResult) *Report {
	r := &Report{
		ID:             uuid.New().String(),
		Generated:      g.now(),
		Advisories:     advisories(p, g.periodsPerYear),
		portfolio:      p,
		simulation:     result,
		riskFreeRate:   g.riskFreeRate,
		periodsPerYear: g.periodsPerYear,
	}
	g.logger.Info("report generated",
		slog.String("report_id", r.ID),
		slog.Int("advisories", len(r.Advisories)))
	return r
}

// advisories inspects the portfolio for the standard risk flags.
func advisories(p *portfolio.Portfolio, periodsPerYear int) []Advisory {
	var out []Advisory

	for _, ts := range p.Components() {
		table := ts.Table()
		days := int(table.EndDate().Sub(table.StartDate()).Hours() / 24)
		if days < minHistoryDays {
			out = append(out, Advisory{
				Kind:   AdvisoryShortHistory,
				Ticker: ts.Ticker(),
				Detail: fmt.Sprintf("only %d days of history (less than 1 year)", days),
			})
		}
		if weight := p.Weight(ts.Ticker()); weight > concentratedWeight {
			out = append(out, Advisory{
				Kind:   AdvisoryConcentratedWeight,
				Ticker: ts.Ticker(),
				Detail: fmt.Sprintf("highly concentrated weight (%.1f%%)", weight*100),
			})
		}
	}

	annualVol := p.Volatility() * math.Sqrt(float64(periodsPerYear))
	if annualVol > highAnnualVolatility {
		out = append(out, Advisory{
			Kind:   AdvisoryHighVolatility,
			Detail: fmt.Sprintf("high portfolio volatility (%.1f%%), elevated risk", annualVol*100),
		})
	}
	return out
}

// Markdown renders the full report document.
func (r *Report) Markdown() string {
	p := r.portfolio
	mc := r.simulation

	periods := float64(r.periodsPerYear)
	annualReturn := p.Return() * periods
	annualVol := p.Volatility() * math.Sqrt(periods)
	sharpe := p.SharpeRatio(r.riskFreeRate, r.periodsPerYear)

	var b strings.Builder

	fmt.Fprintf(&b, "# Portfolio Analysis Report\n\n")
	fmt.Fprintf(&b, "**Report ID:** %s\n\n", r.ID)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", r.Generated.Format(reportTimestampFormat))
	fmt.Fprintf(&b, "---\n\n")

	fmt.Fprintf(&b, "## Executive Summary\n\n")
	fmt.Fprintf(&b, "- **Annualized Return:** %.2f%%\n", annualReturn*100)
	fmt.Fprintf(&b, "- **Annualized Volatility:** %.2f%%\n", annualVol*100)
	fmt.Fprintf(&b, "- **Number of Assets:** %d\n", len(p.Components()))
	fmt.Fprintf(&b, "- **Portfolio Sharpe Ratio:** %.4f\n\n", sharpe)

	fmt.Fprintf(&b, "## Key Metrics\n\n")
	fmt.Fprintf(&b, "- **Value at Risk (VaR %.0f%%):** $%.2f\n", mc.Confidence*100, mc.VaR)
	fmt.Fprintf(&b, "- **Potential Loss (VaR):** $%.2f\n", mc.VaRLoss)
	fmt.Fprintf(&b, "- **Expected Value (%d days):** $%.2f\n\n", mc.Horizon, mc.MeanFinalValue)

	fmt.Fprintf(&b, "## Per-Asset Analysis\n\n")
	fmt.Fprintf(&b, "| Ticker | Weight | Annualized Return | Volatility | Sharpe Ratio | CAGR |\n")
	fmt.Fprintf(&b, "|--------|--------|-------------------|------------|--------------|------|\n")
	for _, ts := range p.Components() {
		fmt.Fprintf(&b, "| %s | %.2f%% | %.2f%% | %.2f%% | %.4f | %.2f%% |\n",
			ts.Ticker(),
			p.Weight(ts.Ticker())*100,
			ts.MeanReturn()*periods*100,
			ts.StdevReturn()*math.Sqrt(periods)*100,
			ts.SharpeRatio(r.riskFreeRate, r.periodsPerYear),
			ts.CAGR()*100)
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "## Advisories and Considerations\n\n")
	if len(r.Advisories) == 0 {
		fmt.Fprintf(&b, "No significant advisories detected.\n\n")
	} else {
		for _, a := range r.Advisories {
			if a.Ticker != "" {
				fmt.Fprintf(&b, "- **%s:** %s\n", a.Ticker, a.Detail)
			} else {
				fmt.Fprintf(&b, "- **Portfolio:** %s\n", a.Detail)
			}
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "## Conclusion\n\n")
	fmt.Fprintf(&b, "### Monte Carlo Simulation Results\n\n")
	fmt.Fprintf(&b, "Based on %d simulations over %d days:\n\n", mc.NumPaths, mc.Horizon)
	fmt.Fprintf(&b, "- **Optimistic scenario (95th percentile):** $%.2f\n", mc.Percentile95)
	fmt.Fprintf(&b, "- **Expected scenario (mean):** $%.2f\n", mc.MeanFinalValue)
	fmt.Fprintf(&b, "- **Pessimistic scenario (5th percentile):** $%.2f\n\n", mc.Percentile5)

	if sharpe > favorableSharpe {
		fmt.Fprintf(&b, "The portfolio shows a favorable Sharpe ratio (above 1.0), indicating good risk-adjusted returns.\n")
	} else {
		fmt.Fprintf(&b, "The Sharpe ratio is low (below 1.0); consider reviewing the portfolio composition.\n")
	}

	return b.String()
}

// Save writes the Markdown document to path, creating parent directories
// as needed.
func (r *Report) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(r.Markdown()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
