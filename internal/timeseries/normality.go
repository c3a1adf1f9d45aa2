package timeseries

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"riskcli/internal/errors"
)

// NormalityLabel is the categorical outcome of a normality test.
type NormalityLabel string

const (
	LabelNormal    NormalityLabel = "Normal"
	LabelNotNormal NormalityLabel = "NotNormal"
)

// NormalitySignificance is the p-value threshold for rejecting normality.
const NormalitySignificance = 0.05

// NormalityResult holds the outcome of a Shapiro-Wilk test on the return
// sample.
type NormalityResult struct {
	Statistic float64
	PValue    float64
	IsNormal  bool
	Label     NormalityLabel
}

// TestNormality runs a Shapiro-Wilk test on the log-return sample and
// decides normality at the 0.05 significance threshold.
func (ts *TimeSeries) TestNormality() (NormalityResult, error) {
	w, p, err := shapiroWilk(ts.returns)
	if err != nil {
		return NormalityResult{}, err
	}

	result := NormalityResult{
		Statistic: w,
		PValue:    p,
		IsNormal:  p > NormalitySignificance,
	}
	if result.IsNormal {
		result.Label = LabelNormal
	} else {
		result.Label = LabelNotNormal
	}
	return result, nil
}

// shapiroWilk implements the Royston AS R94 approximation of the
// Shapiro-Wilk W statistic and its p-value, valid for 3 <= n <= 5000
// samples.
func shapiroWilk(sample []float64) (w, p float64, err error) {
	n := len(sample)
	if n < 3 {
		return 0, 0, errors.NewInsufficientDataError(
			fmt.Sprintf("normality test needs at least 3 returns, got %d", n), nil)
	}
	if n > 5000 {
		return 0, 0, errors.NewValidationError(
			fmt.Sprintf("normality test approximation is invalid beyond 5000 samples, got %d", n), nil)
	}

	x := append([]float64(nil), sample...)
	sort.Float64s(x)

	if x[n-1]-x[0] == 0 {
		return 0, 0, errors.NewValidationError("normality test is undefined for a zero-range sample", nil)
	}

	norm := distuv.UnitNormal

	// Expected values of the standard normal order statistics
	// (Blom approximation), and their squared norm.
	m := make([]float64, n)
	ssm := 0.0
	for i := 0; i < n; i++ {
		m[i] = norm.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		ssm += m[i] * m[i]
	}

	a := make([]float64, n)
	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
	} else {
		rsn := 1 / math.Sqrt(float64(n))
		cn := m[n-1] / math.Sqrt(ssm)
		an := polyval([]float64{-2.706056, 4.434685, -2.071190, -0.147981, 0.221157, cn}, rsn)
		if n > 5 {
			cn1 := m[n-2] / math.Sqrt(ssm)
			an1 := polyval([]float64{-3.582633, 5.682633, -1.752461, -0.293762, 0.042981, cn1}, rsn)
			phi := (ssm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
			a[n-1], a[n-2] = an, an1
			a[0], a[1] = -an, -an1
			for i := 2; i < n-2; i++ {
				a[i] = m[i] / math.Sqrt(phi)
			}
		} else {
			phi := (ssm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
			a[n-1] = an
			a[0] = -an
			for i := 1; i < n-1; i++ {
				a[i] = m[i] / math.Sqrt(phi)
			}
		}
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	num, den := 0.0, 0.0
	for i, v := range x {
		num += a[i] * v
		den += (v - mean) * (v - mean)
	}
	w = num * num / den
	if w > 1 {
		w = 1
	}

	// Significance via Royston's normalizing transformations.
	switch {
	case n == 3:
		p = 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		p = math.Max(0, math.Min(1, p))
	case n <= 11:
		fn := float64(n)
		gamma := -2.273 + 0.459*fn
		w1 := -math.Log(gamma - math.Log(1-w))
		mu := 0.5440 - 0.39978*fn + 0.025054*fn*fn - 0.0006714*fn*fn*fn
		sigma := math.Exp(1.3822 - 0.77857*fn + 0.062767*fn*fn - 0.0020322*fn*fn*fn)
		p = 1 - norm.CDF((w1-mu)/sigma)
	default:
		u := math.Log(float64(n))
		lw := math.Log(1 - w)
		mu := -1.5861 - 0.31082*u - 0.083751*u*u + 0.0038915*u*u*u
		sigma := math.Exp(-0.4803 - 0.082676*u + 0.0030302*u*u)
		p = 1 - norm.CDF((lw-mu)/sigma)
	}

	return w, p, nil
}

// polyval evaluates a polynomial with coefficients ordered from the highest
// power down to the constant term.
func polyval(coeffs []float64, x float64) float64 {
	v := 0.0
	for _, c := range coeffs {
		v = v*x + c
	}
	return v
}
