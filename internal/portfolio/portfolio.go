// Package portfolio aggregates instrument series into portfolio-level
// return, volatility, and covariance structure.
package portfolio

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"riskcli/internal/errors"
	"riskcli/internal/pricetable"
	"riskcli/internal/timeseries"
)

// WeightTolerance is the allowed deviation of the weight sum from 1.0
// before renormalization kicks in.
const WeightTolerance = 0.01

// WarnWeightsRenormalized reports that the supplied weights did not sum to
// 1.0 and were rescaled, preserving their relative proportions.
const WarnWeightsRenormalized pricetable.WarningKind = "WEIGHTS_RENORMALIZED"

// Portfolio combines instrument series with weights. All derived state
// (alignment, covariance, aggregate return and volatility) is computed once
// at construction and immutable afterwards. Components are shared with the
// caller, never mutated.
type Portfolio struct {
	components []*timeseries.TimeSeries
	weights    map[string]float64

	tickers        []string // covariance row/column order
	alignedDates   []time.Time
	alignedReturns *mat.Dense // len(alignedDates) x len(tickers)
	covariance     *mat.SymDense
	meanReturns    []float64
	portReturn     float64
	portVolatility float64
}

// New builds a portfolio from components and a weight map keyed by ticker.
// Weights whose sum deviates from 1.0 by more than WeightTolerance are
// renormalized with a warning. Construction fails when the weight-key set
// differs from the component-ticker set, or when the components share no
// common trading dates.
func New(components []*timeseries.TimeSeries, weights map[string]float64) (*Portfolio, []pricetable.Warning, error) {
	if len(components) == 0 {
		return nil, nil, errors.NewValidationError("portfolio needs at least one component", nil)
	}

	warnings := []pricetable.Warning{}

	normalized, w := normalizeWeights(weights)
	if w != nil {
		warnings = append(warnings, *w)
	}

	if err := validateTickers(components, normalized); err != nil {
		return nil, nil, err
	}

	p := &Portfolio{
		components: components,
		weights:    normalized,
	}

	if err := p.alignReturns(); err != nil {
		return nil, nil, err
	}
	p.computeMetrics()

	return p, warnings, nil
}

// normalizeWeights rescales the weight map to sum to 1.0 when the input sum
// is outside the tolerance band. Relative proportions are preserved.
func normalizeWeights(weights map[string]float64) (map[string]float64, *pricetable.Warning) {
	sum := 0.0
	for _, v := range weights {
		sum += v
	}

	out := make(map[string]float64, len(weights))
	if math.Abs(sum-1) <= WeightTolerance {
		for k, v := range weights {
			out[k] = v
		}
		return out, nil
	}

	for k, v := range weights {
		out[k] = v / sum
	}
	return out, &pricetable.Warning{
		Kind:   WarnWeightsRenormalized,
		Detail: fmt.Sprintf("weights summed to %.4f and were renormalized to 1.0", sum),
	}
}

// validateTickers requires the weight-key set to equal the component-ticker set.
func validateTickers(components []*timeseries.TimeSeries, weights map[string]float64) error {
	componentSet := make(map[string]bool, len(components))
	for _, c := range components {
		componentSet[c.Ticker()] = true
	}

	if len(componentSet) != len(weights) {
		return mismatchError(componentSet, weights)
	}
	for ticker := range weights {
		if !componentSet[ticker] {
			return mismatchError(componentSet, weights)
		}
	}
	return nil
}

func mismatchError(componentSet map[string]bool, weights map[string]float64) error {
	componentTickers := make([]string, 0, len(componentSet))
	for t := range componentSet {
		componentTickers = append(componentTickers, t)
	}
	weightTickers := make([]string, 0, len(weights))
	for t := range weights {
		weightTickers = append(weightTickers, t)
	}
	sort.Strings(componentTickers)
	sort.Strings(weightTickers)
	return errors.NewMismatchError(
		fmt.Sprintf("component tickers %v do not match weight tickers %v", componentTickers, weightTickers), nil)
}

// alignReturns joins each component's log-returns by calendar date across
// all components, then drops any date missing a value for at least one
// component. What remains is the common trading-date intersection. Keys are
// normalized to UTC midnight so sources emitting timestamps in different
// locations still join.
func (p *Portfolio) alignReturns() error {
	type cell struct {
		values map[string]float64
	}
	byDate := make(map[time.Time]*cell)

	for _, c := range p.components {
		table := c.Table()
		for _, row := range table.Rows {
			if !row.HasReturn() {
				continue
			}
			key := calendarDate(row.Date)
			entry, ok := byDate[key]
			if !ok {
				entry = &cell{values: make(map[string]float64, len(p.components))}
				byDate[key] = entry
			}
			entry.values[c.Ticker()] = row.LogReturn
		}
	}

	var dates []time.Time
	for date, entry := range byDate {
		if len(entry.values) == len(p.components) {
			dates = append(dates, date)
		}
	}
	if len(dates) == 0 {
		return errors.NewInsufficientOverlapError(
			fmt.Sprintf("no common trading dates across %d components", len(p.components)), nil)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	tickers := make([]string, len(p.components))
	for i, c := range p.components {
		tickers[i] = c.Ticker()
	}

	aligned := mat.NewDense(len(dates), len(tickers), nil)
	for i, date := range dates {
		for j, ticker := range tickers {
			aligned.Set(i, j, byDate[date].values[ticker])
		}
	}

	p.tickers = tickers
	p.alignedDates = dates
	p.alignedReturns = aligned
	return nil
}

// calendarDate truncates a timestamp to its civil date at UTC midnight.
func calendarDate(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// computeMetrics derives the covariance matrix, the per-component mean
// returns, and the aggregate portfolio return and volatility. Weights are
// looked up by ticker name, so any column ordering is safe.
func (p *Portfolio) computeMetrics() {
	n := len(p.tickers)

	p.covariance = mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(p.covariance, p.alignedReturns, nil)

	p.meanReturns = make([]float64, n)
	for j := 0; j < n; j++ {
		p.meanReturns[j] = stat.Mean(mat.Col(nil, j, p.alignedReturns), nil)
	}

	weightVec := make([]float64, n)
	for j, ticker := range p.tickers {
		weightVec[j] = p.weights[ticker]
	}

	p.portReturn = 0
	for j := 0; j < n; j++ {
		p.portReturn += weightVec[j] * p.meanReturns[j]
	}

	variance := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			variance += weightVec[i] * p.covariance.At(i, j) * weightVec[j]
		}
	}
	p.portVolatility = math.Sqrt(variance)
}

// Return returns the portfolio's weighted mean periodic return.
func (p *Portfolio) Return() float64 { return p.portReturn }

// Volatility returns the portfolio's periodic volatility sqrt(w'.Cov.w).
func (p *Portfolio) Volatility() float64 { return p.portVolatility }

// SharpeRatio mirrors the instrument-level formula using the aggregate
// return and volatility. A zero annualized volatility yields 0.
func (p *Portfolio) SharpeRatio(riskFreeRate float64, periodsPerYear int) float64 {
	annualReturn := p.portReturn * float64(periodsPerYear)
	annualVol := p.portVolatility * math.Sqrt(float64(periodsPerYear))
	if annualVol == 0 {
		return 0
	}
	return (annualReturn - riskFreeRate) / annualVol
}

// Covariance returns a copy of the sample covariance matrix of the aligned
// returns, in Tickers order.
func (p *Portfolio) Covariance() *mat.SymDense {
	n := len(p.tickers)
	out := mat.NewSymDense(n, nil)
	out.CopySym(p.covariance)
	return out
}

// MeanReturns returns a copy of the per-component mean returns, in Tickers order.
func (p *Portfolio) MeanReturns() []float64 {
	return append([]float64(nil), p.meanReturns...)
}

// Tickers returns the component tickers in covariance column order.
func (p *Portfolio) Tickers() []string {
	return append([]string(nil), p.tickers...)
}

// Weights returns a copy of the (possibly renormalized) weight map.
func (p *Portfolio) Weights() map[string]float64 {
	out := make(map[string]float64, len(p.weights))
	for k, v := range p.weights {
		out[k] = v
	}
	return out
}

// Weight returns the weight assigned to a ticker.
func (p *Portfolio) Weight(ticker string) float64 { return p.weights[ticker] }

// Components returns the shared component series.
func (p *Portfolio) Components() []*timeseries.TimeSeries {
	return append([]*timeseries.TimeSeries(nil), p.components...)
}

// AlignedDates returns the common trading dates, ascending.
func (p *Portfolio) AlignedDates() []time.Time {
	return append([]time.Time(nil), p.alignedDates...)
}

// Value returns the portfolio's current marked value: the sum over
// components of last close times weight, scaled by the display multiplier.
func (p *Portfolio) Value(scale float64) float64 {
	total := 0.0
	for _, c := range p.components {
		total += c.LastClose() * p.weights[c.Ticker()] * scale
	}
	return total
}
