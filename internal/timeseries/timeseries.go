package timeseries

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"riskcli/internal/errors"
	"riskcli/internal/pricetable"
)

// Default analysis parameters, shared with the portfolio aggregator.
const (
	// DefaultRiskFreeRate is the annualized risk-free rate used by the
	// risk-adjusted return ratios.
	DefaultRiskFreeRate = 0.02
	// DefaultPeriodsPerYear is the number of trading periods per year for
	// daily data.
	DefaultPeriodsPerYear = 252
)

// TimeSeries owns one instrument's cleaned price history and its derived
// return statistics. Every metric is computed exactly once at construction;
// the value is immutable afterwards and exposes read accessors only.
type TimeSeries struct {
	ticker string
	source string
	period string
	table  pricetable.Table

	returns  []float64
	mean     float64
	stdev    float64
	median   float64
	skewness float64
	kurtosis float64
	min      float64
	max      float64
}

// New builds a TimeSeries from a cleaned price table. The table must carry
// derived log-returns with at least 2 valid values; construction fails
// atomically otherwise.
func New(ticker, source, period string, table pricetable.Table) (*TimeSeries, error) {
	returns := table.ValidReturns()
	if len(returns) < 2 {
		return nil, errors.NewInsufficientDataError(
			fmt.Sprintf("instrument %s has only %d valid returns, need at least 2", ticker, len(returns)), nil).
			WithContext("ticker", ticker).
			WithContext("returns", len(returns))
	}

	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)

	return &TimeSeries{
		ticker:   ticker,
		source:   source,
		period:   period,
		table:    table.Clone(),
		returns:  returns,
		mean:     stat.Mean(returns, nil),
		stdev:    stat.StdDev(returns, nil),
		median:   stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		skewness: stat.Skew(returns, nil),
		kurtosis: stat.ExKurtosis(returns, nil),
		min:      sorted[0],
		max:      sorted[len(sorted)-1],
	}, nil
}

// Ticker returns the instrument symbol.
func (ts *TimeSeries) Ticker() string { return ts.ticker }

// Source returns the label of the data source the series came from.
func (ts *TimeSeries) Source() string { return ts.source }

// Period returns the label of the covered date range.
func (ts *TimeSeries) Period() string { return ts.period }

// Table returns a copy of the owned price table.
func (ts *TimeSeries) Table() pricetable.Table { return ts.table.Clone() }

// Len returns the number of price observations.
func (ts *TimeSeries) Len() int { return ts.table.Len() }

// Returns returns a copy of the valid log-returns in date order.
func (ts *TimeSeries) Returns() []float64 {
	return append([]float64(nil), ts.returns...)
}

// MeanReturn returns the mean periodic log-return.
func (ts *TimeSeries) MeanReturn() float64 { return ts.mean }

// StdevReturn returns the sample standard deviation of the log-returns.
func (ts *TimeSeries) StdevReturn() float64 { return ts.stdev }

// MedianReturn returns the median log-return.
func (ts *TimeSeries) MedianReturn() float64 { return ts.median }

// Skewness returns the sample skewness of the log-returns.
func (ts *TimeSeries) Skewness() float64 { return ts.skewness }

// Kurtosis returns the excess kurtosis of the log-returns.
func (ts *TimeSeries) Kurtosis() float64 { return ts.kurtosis }

// MinReturn returns the smallest log-return.
func (ts *TimeSeries) MinReturn() float64 { return ts.min }

// MaxReturn returns the largest log-return.
func (ts *TimeSeries) MaxReturn() float64 { return ts.max }

// FirstClose returns the first closing price of the series.
func (ts *TimeSeries) FirstClose() float64 { return ts.table.Rows[0].Close }

// LastClose returns the most recent closing price of the series.
func (ts *TimeSeries) LastClose() float64 { return ts.table.Rows[ts.table.Len()-1].Close }
