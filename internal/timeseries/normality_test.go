package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/stat/distuv"

	"riskcli/internal/errors"
)

// normalQuantileSample returns a perfectly normal-shaped sample of size n:
// the standard normal quantiles at evenly spaced probabilities.
func normalQuantileSample(n int, mu, sigma float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = mu + sigma*distuv.UnitNormal.Quantile((float64(i)+0.5)/float64(n))
	}
	return out
}

func TestShapiroWilk(t *testing.T) {
	t.Run("accepts a normal-shaped sample", func(t *testing.T) {
		sample := normalQuantileSample(100, 0.0005, 0.02)
		w, p, err := shapiroWilk(sample)
		require.NoError(t, err)
		assert.Greater(t, w, 0.98)
		assert.LessOrEqual(t, w, 1.0)
		assert.Greater(t, p, NormalitySignificance)
	})

	t.Run("rejects a heavily skewed sample", func(t *testing.T) {
		normal := normalQuantileSample(100, 0, 1)
		skewed := make([]float64, len(normal))
		for i, v := range normal {
			skewed[i] = math.Exp(v) // lognormal
		}
		w, p, err := shapiroWilk(skewed)
		require.NoError(t, err)
		assert.Less(t, w, 0.95)
		assert.Less(t, p, NormalitySignificance)
	})

	t.Run("small-sample branch", func(t *testing.T) {
		sample := normalQuantileSample(8, 0, 1)
		w, p, err := shapiroWilk(sample)
		require.NoError(t, err)
		assert.Greater(t, w, 0.9)
		assert.Greater(t, p, NormalitySignificance)
	})

	t.Run("too few samples", func(t *testing.T) {
		_, _, err := shapiroWilk([]float64{0.1, 0.2})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeInsufficientData))
	})

	t.Run("zero-range sample", func(t *testing.T) {
		_, _, err := shapiroWilk([]float64{0.01, 0.01, 0.01, 0.01})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})
}

func TestTestNormality(t *testing.T) {
	t.Run("normal returns labeled Normal", func(t *testing.T) {
		ts, err := New("N", "test", "2024", tableFromReturns(t, normalQuantileSample(120, 0.0005, 0.02)))
		require.NoError(t, err)

		result, err := ts.TestNormality()
		require.NoError(t, err)
		assert.True(t, result.IsNormal)
		assert.Equal(t, LabelNormal, result.Label)
		assert.Greater(t, result.PValue, NormalitySignificance)
	})

	t.Run("skewed returns labeled NotNormal", func(t *testing.T) {
		base := normalQuantileSample(120, 0, 1)
		skewed := make([]float64, len(base))
		for i, v := range base {
			skewed[i] = math.Exp(v) * 0.01
		}
		ts, err := New("S", "test", "2024", tableFromReturns(t, skewed))
		require.NoError(t, err)

		result, err := ts.TestNormality()
		require.NoError(t, err)
		assert.False(t, result.IsNormal)
		assert.Equal(t, LabelNotNormal, result.Label)
	})

	t.Run("constant returns are degenerate", func(t *testing.T) {
		ts, err := New("FLAT", "test", "2024", tableFromReturns(t, constantReturns(40, 0.001)))
		require.NoError(t, err)

		_, err = ts.TestNormality()
		assert.Error(t, err)
	})
}
