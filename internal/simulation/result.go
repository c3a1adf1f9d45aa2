package simulation

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"gonum.org/v1/gonum/stat"

	"riskcli/internal/portfolio"
)

// DisplayScale multiplies component closes when valuing the portfolio for
// simulation and reporting.
const DisplayScale = 100

// Paths holds simulated value trajectories: one row per independent path,
// columns for time steps 0..horizon.
type Paths [][]float64

// NumPaths returns the number of simulated trajectories.
func (p Paths) NumPaths() int { return len(p) }

// Steps returns the number of time steps per trajectory, including step 0.
func (p Paths) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0])
}

// FinalValues returns the last value of every trajectory.
func (p Paths) FinalValues() []float64 {
	out := make([]float64, len(p))
	for i, row := range p {
		out[i] = row[len(row)-1]
	}
	return out
}

// MeanTrajectory returns the cross-path mean at every time step.
func (p Paths) MeanTrajectory() []float64 {
	steps := p.Steps()
	out := make([]float64, steps)
	column := make([]float64, len(p))
	for t := 0; t < steps; t++ {
		for i, row := range p {
			column[i] = row[t]
		}
		out[t] = stat.Mean(column, nil)
	}
	return out
}

// QuantileTrajectory returns the cross-path quantile (0..1, linearly
// interpolated) at every time step.
func (p Paths) QuantileTrajectory(q float64) []float64 {
	steps := p.Steps()
	out := make([]float64, steps)
	column := make([]float64, len(p))
	for t := 0; t < steps; t++ {
		for i, row := range p {
			column[i] = row[t]
		}
		sort.Float64s(column)
		out[t] = stat.Quantile(q, stat.LinInterp, column, nil)
	}
	return out
}

// quantile returns the linearly interpolated quantile of values.
func quantile(q float64, values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.LinInterp, sorted, nil)
}

// PortfolioResult is the outcome of one portfolio-mode Monte Carlo run.
// Ephemeral: owned by the caller, never persisted.
type PortfolioResult struct {
	Paths          Paths
	InitialValue   float64
	MeanFinalValue float64
	Percentile5    float64
	Percentile95   float64
	VaR            float64
	VaRLoss        float64
	Confidence     float64
	NumPaths       int
	Horizon        int
}

// SimulatePortfolio projects the portfolio as a single lognormal process
// driven by its aggregate mean return and volatility, then extracts VaR
// statistics from the distribution of final values. The initial value is
// the component closes weighted and scaled by DisplayScale.
func (e *Engine) SimulatePortfolio(ctx context.Context, p *portfolio.Portfolio, confidence float64) (*PortfolioResult, error) {
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("confidence level must be in (0, 1), got %f", confidence)
	}

	initial := p.Value(DisplayScale)

	e.logger.InfoContext(ctx, "starting portfolio simulation",
		"num_paths", e.params.NumPaths,
		"horizon", e.params.Horizon,
		"initial_value", initial,
		"confidence", confidence,
	)

	paths, err := e.Simulate(ctx, p.Return(), p.Volatility(), initial)
	if err != nil {
		return nil, err
	}

	finals := paths.FinalValues()
	varValue := quantile(1-confidence, finals)

	return &PortfolioResult{
		Paths:          paths,
		InitialValue:   initial,
		MeanFinalValue: stat.Mean(finals, nil),
		Percentile5:    quantile(0.05, finals),
		Percentile95:   quantile(0.95, finals),
		VaR:            varValue,
		VaRLoss:        initial - varValue,
		Confidence:     confidence,
		NumPaths:       e.params.NumPaths,
		Horizon:        e.params.Horizon,
	}, nil
}

// SimulateComponents runs an independent GBM per component using each
// instrument's own mean return, volatility, and last close. It returns a
// map of ticker to trajectory matrix with no aggregate statistics; callers
// derive their own if needed.
func (e *Engine) SimulateComponents(ctx context.Context, p *portfolio.Portfolio) (map[string]Paths, error) {
	out := make(map[string]Paths, len(p.Components()))
	for _, c := range p.Components() {
		// Offset the seed per ticker so components draw distinct streams
		// while staying reproducible.
		paths, err := e.simulate(ctx, c.MeanReturn(), c.StdevReturn(), c.LastClose(), e.params.Seed+tickerOffset(c.Ticker()))
		if err != nil {
			return nil, fmt.Errorf("simulate component %s: %w", c.Ticker(), err)
		}
		out[c.Ticker()] = paths
	}
	return out, nil
}

func tickerOffset(ticker string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	return h.Sum64()
}
