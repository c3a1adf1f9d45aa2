package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"riskcli/internal/errors"
)

// Default simulation parameters.
const (
	DefaultNumPaths   = 1000
	DefaultHorizon    = 252
	DefaultDt         = 1.0
	DefaultConfidence = 0.95
	DefaultWorkers    = 4
)

// Params configures a simulation engine. The seed is explicit: two engines
// with equal parameters produce identical trajectories.
type Params struct {
	NumPaths int
	Horizon  int
	Dt       float64
	Seed     uint64
	Workers  int
}

// Engine generates GBM price trajectories.
type Engine struct {
	params Params
	logger *slog.Logger
}

// NewEngine validates the parameters and builds an engine. Zero values for
// Dt and Workers fall back to defaults.
func NewEngine(params Params, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if params.NumPaths <= 0 {
		return nil, errors.NewValidationError(
			fmt.Sprintf("number of paths must be positive, got %d", params.NumPaths), nil)
	}
	if params.Horizon <= 0 {
		return nil, errors.NewValidationError(
			fmt.Sprintf("horizon must be positive, got %d", params.Horizon), nil)
	}
	if params.Dt == 0 {
		params.Dt = DefaultDt
	}
	if params.Dt < 0 {
		return nil, errors.NewValidationError(
			fmt.Sprintf("dt must be positive, got %f", params.Dt), nil)
	}
	if params.Workers <= 0 {
		params.Workers = DefaultWorkers
	}
	return &Engine{params: params, logger: logger}, nil
}

// Simulate runs the GBM projection for a single process with the given
// periodic drift and volatility. The result matrix has one row per path and
// Horizon+1 columns, with column 0 seeded to initialValue for every path:
//
//	value[t] = value[t-1] * exp((mu - 0.5*sigma^2)*dt + sigma*sqrt(dt)*Z)
func (e *Engine) Simulate(ctx context.Context, mu, sigma, initialValue float64) (Paths, error) {
	return e.simulate(ctx, mu, sigma, initialValue, e.params.Seed)
}

func (e *Engine) simulate(ctx context.Context, mu, sigma, initialValue float64, seedBase uint64) (Paths, error) {
	start := time.Now()
	p := e.params

	paths := make(Paths, p.NumPaths)
	for i := range paths {
		paths[i] = make([]float64, p.Horizon+1)
		paths[i][0] = initialValue
	}

	drift := (mu - 0.5*sigma*sigma) * p.Dt
	diffusion := sigma * math.Sqrt(p.Dt)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < p.Workers; w++ {
		worker := w
		g.Go(func() error {
			for i := worker; i < p.NumPaths; i += p.Workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				// One deterministic stream per path keeps results
				// independent of the worker count.
				normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seedBase + uint64(i))}
				row := paths[i]
				for t := 1; t <= p.Horizon; t++ {
					row[t] = row[t-1] * math.Exp(drift+diffusion*normal.Rand())
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("path generation: %w", err)
	}

	e.logger.DebugContext(ctx, "simulation completed",
		"num_paths", p.NumPaths,
		"horizon", p.Horizon,
		"duration", time.Since(start),
	)
	return paths, nil
}
