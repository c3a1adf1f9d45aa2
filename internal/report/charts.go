package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/vicanso/go-charts/v2"

	"riskcli/internal/portfolio"
	"riskcli/internal/simulation"
)

const histogramBins = 50

// MonteCarloChart renders the simulation fan as a PNG: mean trajectory
// plus the 5th and 95th percentile bands over the horizon.
func MonteCarloChart(result *simulation.PortfolioResult) ([]byte, error) {
	mean := result.Paths.MeanTrajectory()
	p5 := result.Paths.QuantileTrajectory(0.05)
	p95 := result.Paths.QuantileTrajectory(0.95)

	labels := make([]string, len(mean))
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i)
	}
	split := len(labels) / 10
	if split < 1 {
		split = 1
	}

	painter, err := charts.LineRender(
		[][]float64{p5, mean, p95},
		charts.TitleTextOptionFunc(fmt.Sprintf("Monte Carlo Simulation (%d paths, %d days)",
			result.NumPaths, result.Horizon)),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{"5th Percentile", "Mean Trajectory", "95th Percentile"},
			Top:  charts.PositionTop,
		}),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: split,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// WeightsChart renders the portfolio composition as a pie chart.
func WeightsChart(p *portfolio.Portfolio) ([]byte, error) {
	tickers := p.Tickers()
	sort.Strings(tickers)

	values := make([]float64, 0, len(tickers))
	labels := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		weight := p.Weight(ticker)
		values = append(values, weight)
		labels = append(labels, fmt.Sprintf("%s (%.1f%%)", ticker, weight*100))
	}

	painter, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc("Portfolio Weights"),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// ReturnsDistributionChart renders a histogram of the weight-scaled daily
// log returns pooled across every component.
func ReturnsDistributionChart(p *portfolio.Portfolio) ([]byte, error) {
	var pooled []float64
	for _, ts := range p.Components() {
		weight := p.Weight(ts.Ticker())
		for _, r := range ts.Returns() {
			pooled = append(pooled, r*weight)
		}
	}
	if len(pooled) == 0 {
		return nil, fmt.Errorf("no returns to plot")
	}

	counts, labels := histogram(pooled, histogramBins)

	painter, err := charts.BarRender(
		[][]float64{counts},
		charts.TitleTextOptionFunc("Portfolio Returns Distribution"),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: 10,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// histogram buckets values into bins of equal width and labels each bin
// with its center.
func histogram(values []float64, bins int) (counts []float64, labels []string) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	width := (max - min) / float64(bins)
	if width == 0 {
		return []float64{float64(len(values))}, []string{fmt.Sprintf("%.4f", min)}
	}

	counts = make([]float64, bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx == bins {
			idx--
		}
		counts[idx]++
	}

	labels = make([]string, bins)
	for i := range labels {
		center := min + (float64(i)+0.5)*width
		labels[i] = fmt.Sprintf("%.4f", center)
	}
	return counts, labels
}

// SaveCharts writes the full chart set under dir and returns the paths.
func SaveCharts(dir string, p *portfolio.Portfolio, result *simulation.PortfolioResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	renders := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{"montecarlo_simulation.png", func() ([]byte, error) { return MonteCarloChart(result) }},
		{"returns_distribution.png", func() ([]byte, error) { return ReturnsDistributionChart(p) }},
		{"portfolio_weights.png", func() ([]byte, error) { return WeightsChart(p) }},
	}

	var paths []string
	for _, r := range renders {
		img, err := r.render()
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", r.name, err)
		}
		path := filepath.Join(dir, r.name)
		if err := os.WriteFile(path, img, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", r.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
