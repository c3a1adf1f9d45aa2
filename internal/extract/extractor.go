// Package extract coordinates data acquisition with the analytics core:
// fetching raw history, preprocessing it, and assembling instrument series
// and portfolios.
package extract

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"riskcli/internal/errors"
	"riskcli/internal/portfolio"
	"riskcli/internal/pricetable"
	"riskcli/internal/sources"
	"riskcli/internal/timeseries"
)

// Extractor fetches and cleans price history for batches of instruments.
// A single instrument's failure is tolerated and logged; the batch fails
// only when no instrument survives.
type Extractor struct {
	source sources.Source
	logger *slog.Logger
}

// New creates an extractor over the given data source.
func New(source sources.Source, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{source: source, logger: logger}
}

// Source returns the underlying data source.
func (e *Extractor) Source() sources.Source { return e.source }

// maxConcurrentFetches bounds parallel source requests in History.
const maxConcurrentFetches = 4

// History fetches, preprocesses, and wraps each ticker's history into a
// TimeSeries, in parallel. Failed tickers are skipped with a warning; the
// call fails only when every ticker fails or the context is canceled.
// Results keep the order of the input tickers.
func (e *Extractor) History(ctx context.Context, tickers []string, from, to time.Time) ([]*timeseries.TimeSeries, error) {
	period := fmt.Sprintf("%s to %s", from.Format(sources.DateFormat), to.Format(sources.DateFormat))

	results := make([]*timeseries.TimeSeries, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, ticker := range tickers {
		g.Go(func() error {
			ts, warnings, err := e.extractOne(gctx, ticker, from, to, period)
			if err != nil {
				if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
					return err
				}
				e.logger.WarnContext(gctx, "skipping instrument",
					"ticker", ticker,
					"error", err,
				)
				return nil
			}
			for _, w := range warnings {
				e.logger.WarnContext(gctx, "data quality warning",
					"ticker", ticker,
					"kind", string(w.Kind),
					"detail", w.Detail,
				)
			}
			e.logger.InfoContext(gctx, "extracted instrument",
				"ticker", ticker,
				"source", e.source.Name(),
				"rows", ts.Len(),
			)
			results[i] = ts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*timeseries.TimeSeries, 0, len(tickers))
	for _, ts := range results {
		if ts != nil {
			out = append(out, ts)
		}
	}
	if len(out) == 0 {
		return nil, errors.NewInsufficientDataError(
			fmt.Sprintf("no usable instruments among %d tickers", len(tickers)), nil)
	}
	return out, nil
}

func (e *Extractor) extractOne(ctx context.Context, ticker string, from, to time.Time, period string) (*timeseries.TimeSeries, []pricetable.Warning, error) {
	raw, err := e.source.Fetch(ctx, ticker, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	cleaned, warnings, err := pricetable.Preprocess(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("preprocess %s: %w", ticker, err)
	}

	ts, err := timeseries.New(ticker, e.source.Name(), period, cleaned)
	if err != nil {
		return nil, nil, err
	}
	return ts, warnings, nil
}

// BuildPortfolio extracts every weighted ticker and assembles the
// portfolio. Unlike History, a failed ticker is fatal here: a portfolio
// with missing components would silently change its composition.
func (e *Extractor) BuildPortfolio(ctx context.Context, weights map[string]float64, from, to time.Time) (*portfolio.Portfolio, []pricetable.Warning, error) {
	period := fmt.Sprintf("%s to %s", from.Format(sources.DateFormat), to.Format(sources.DateFormat))

	components := make([]*timeseries.TimeSeries, 0, len(weights))
	for ticker := range weights {
		ts, warnings, err := e.extractOne(ctx, ticker, from, to, period)
		if err != nil {
			return nil, nil, fmt.Errorf("portfolio component %s: %w", ticker, err)
		}
		for _, w := range warnings {
			e.logger.WarnContext(ctx, "data quality warning",
				"ticker", ticker,
				"kind", string(w.Kind),
				"detail", w.Detail,
			)
		}
		components = append(components, ts)
	}

	p, warnings, err := portfolio.New(components, weights)
	if err != nil {
		return nil, nil, err
	}

	e.logger.InfoContext(ctx, "portfolio assembled",
		"components", len(components),
		"mean_return", p.Return(),
		"volatility", p.Volatility(),
	)
	return p, warnings, nil
}
