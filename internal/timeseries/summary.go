package timeseries

import (
	"fmt"
	"math"
)

// SummaryField is one entry of the ordered instrument report.
type SummaryField struct {
	Key   string
	Value string
}

const summaryDateFormat = "2006-01-02"

// Summary assembles the instrument's identity and derived metrics into an
// ordered key-value report, formatted for display. Uses the default
// risk-free rate and trading calendar.
func (ts *TimeSeries) Summary() []SummaryField {
	annualReturn := ts.mean * DefaultPeriodsPerYear
	annualVol := ts.stdev * math.Sqrt(DefaultPeriodsPerYear)
	dd := ts.MaxDrawdown()

	fields := []SummaryField{
		{"Ticker", ts.ticker},
		{"Source", ts.source},
		{"Period", ts.period},
		{"Data Points", fmt.Sprintf("%d", ts.table.Len())},
		{"Start Date", ts.table.StartDate().Format(summaryDateFormat)},
		{"End Date", ts.table.EndDate().Format(summaryDateFormat)},
		{"Mean Daily Return", fmt.Sprintf("%.6f", ts.mean)},
		{"Median Daily Return", fmt.Sprintf("%.6f", ts.median)},
		{"Daily Volatility", fmt.Sprintf("%.6f", ts.stdev)},
		{"Skewness", fmt.Sprintf("%.4f", ts.skewness)},
		{"Excess Kurtosis", fmt.Sprintf("%.4f", ts.kurtosis)},
		{"Min Daily Return", fmt.Sprintf("%.6f", ts.min)},
		{"Max Daily Return", fmt.Sprintf("%.6f", ts.max)},
		{"Annualized Return", fmt.Sprintf("%.4f", annualReturn)},
		{"Annualized Volatility", fmt.Sprintf("%.4f", annualVol)},
		{"Sharpe Ratio", fmt.Sprintf("%.4f", ts.SharpeRatio(DefaultRiskFreeRate, DefaultPeriodsPerYear))},
		{"Sortino Ratio", fmt.Sprintf("%.4f", ts.SortinoRatio(DefaultRiskFreeRate, DefaultPeriodsPerYear))},
		{"CAGR", fmt.Sprintf("%.2f%%", ts.CAGR()*100)},
		{"Max Drawdown", fmt.Sprintf("%.2f%% (%s to %s)",
			dd.Depth*100, dd.Peak.Format(summaryDateFormat), dd.Trough.Format(summaryDateFormat))},
		{"VaR 95%", fmt.Sprintf("%.4f", ts.ValueAtRisk(0.95))},
		{"CVaR 95%", fmt.Sprintf("%.4f", ts.ConditionalValueAtRisk(0.95))},
	}

	if normality, err := ts.TestNormality(); err == nil {
		fields = append(fields, SummaryField{
			"Normality (Shapiro-Wilk)",
			fmt.Sprintf("%s (W=%.4f, p=%.4f)", normality.Label, normality.Statistic, normality.PValue),
		})
	}

	return fields
}
