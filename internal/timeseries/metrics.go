package timeseries

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SharpeRatio returns the annualized risk-adjusted return:
//
//	(mean*periods - riskFree) / (stdev*sqrt(periods))
//
// A zero annualized volatility yields 0, never a division failure.
func (ts *TimeSeries) SharpeRatio(riskFreeRate float64, periodsPerYear int) float64 {
	annualReturn := ts.mean * float64(periodsPerYear)
	annualVol := ts.stdev * math.Sqrt(float64(periodsPerYear))
	if annualVol == 0 {
		return 0
	}
	return (annualReturn - riskFreeRate) / annualVol
}

// SortinoRatio mirrors SharpeRatio but penalizes downside volatility only:
// the denominator is the annualized standard deviation of the negative
// returns. A zero downside deviation yields 0.
func (ts *TimeSeries) SortinoRatio(riskFreeRate float64, periodsPerYear int) float64 {
	var downside []float64
	for _, r := range ts.returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) < 2 {
		return 0
	}
	downsideVol := stat.StdDev(downside, nil) * math.Sqrt(float64(periodsPerYear))
	if downsideVol == 0 {
		return 0
	}
	annualReturn := ts.mean * float64(periodsPerYear)
	return (annualReturn - riskFreeRate) / downsideVol
}

// CAGR returns the compound annual growth rate over the observed span:
//
//	(finalClose/initialClose)^(365.25/days) - 1
//
// Degenerate spans (fewer than 2 rows, zero elapsed days, non-positive
// initial price) yield 0.
func (ts *TimeSeries) CAGR() float64 {
	if ts.table.Len() < 2 {
		return 0
	}
	initial := ts.FirstClose()
	final := ts.LastClose()
	days := ts.table.EndDate().Sub(ts.table.StartDate()).Hours() / 24
	if days == 0 || initial <= 0 {
		return 0
	}
	return math.Pow(final/initial, 365.25/days) - 1
}

// Drawdown describes the deepest peak-to-trough decline of the series.
// Depth is negative (a -0.25 depth is a 25% decline from the peak).
type Drawdown struct {
	Depth  float64
	Peak   time.Time
	Trough time.Time
}

// MaxDrawdown scans the close prices for the deepest decline from a running
// maximum. The trough is the point of minimum drawdown; the peak is the
// running maximum's location at or before the trough.
func (ts *TimeSeries) MaxDrawdown() Drawdown {
	rows := ts.table.Rows

	runningMax := rows[0].Close
	runningMaxAt := rows[0].Date
	worst := Drawdown{Peak: rows[0].Date, Trough: rows[0].Date}

	for _, row := range rows {
		if row.Close > runningMax {
			runningMax = row.Close
			runningMaxAt = row.Date
		}
		dd := (row.Close - runningMax) / runningMax
		if dd < worst.Depth {
			worst.Depth = dd
			worst.Peak = runningMaxAt
			worst.Trough = row.Date
		}
	}
	return worst
}

// ValueAtRisk returns the parametric (Gaussian) VaR of the periodic return
// at the given confidence level. The result is a negative return signaling
// the expected loss threshold.
func (ts *TimeSeries) ValueAtRisk(confidence float64) float64 {
	z := distuv.UnitNormal.Quantile(1 - confidence)
	return ts.mean + z*ts.stdev
}

// ConditionalValueAtRisk returns the expected shortfall: the mean of all
// returns at or below the parametric VaR threshold. More conservative than
// VaR. When no observed return falls in the tail the threshold itself is
// returned.
func (ts *TimeSeries) ConditionalValueAtRisk(confidence float64) float64 {
	threshold := ts.ValueAtRisk(confidence)

	var tail []float64
	for _, r := range ts.returns {
		if r <= threshold {
			tail = append(tail, r)
		}
	}
	if len(tail) == 0 {
		return threshold
	}
	return stat.Mean(tail, nil)
}

// RollingMetrics holds trailing-window statistics, index-aligned with the
// return series. Entries before the first full window are NaN.
type RollingMetrics struct {
	Window int
	Mean   []float64
	Std    []float64
	Sharpe []float64
}

// DefaultRollingWindow is the trailing window length used when none is configured.
const DefaultRollingWindow = 20

// RollingMetrics computes, for each return index, the trailing rolling mean,
// rolling standard deviation, and the annualized rolling Sharpe
// (mean/std * sqrt(252)).
func (ts *TimeSeries) RollingMetrics(window int) RollingMetrics {
	n := len(ts.returns)
	out := RollingMetrics{
		Window: window,
		Mean:   make([]float64, n),
		Std:    make([]float64, n),
		Sharpe: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		if i < window-1 {
			out.Mean[i] = math.NaN()
			out.Std[i] = math.NaN()
			out.Sharpe[i] = math.NaN()
			continue
		}
		slice := ts.returns[i-window+1 : i+1]
		out.Mean[i] = stat.Mean(slice, nil)
		out.Std[i] = stat.StdDev(slice, nil)
		if out.Std[i] == 0 {
			out.Sharpe[i] = 0
		} else {
			out.Sharpe[i] = out.Mean[i] / out.Std[i] * math.Sqrt(float64(DefaultPeriodsPerYear))
		}
	}
	return out
}
