package sources

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskcli/internal/errors"
	"riskcli/internal/pricetable"
)

var (
	testFrom = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testTo   = time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
)

// assertRowsEqual asserts the two row slices are equal, treating a NaN
// field as equal to NaN. assert.Equal relies on reflect.DeepEqual, which
// reports NaN != NaN, so slices carrying the NaN missing-value sentinel
// can never compare equal through it.
func assertRowsEqual(t *testing.T, expected, actual []pricetable.Row) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		e, a := expected[i], actual[i]
		equal := e.Date.Equal(a.Date) && e.DateText == a.DateText &&
			floatEq(e.Open, a.Open) && floatEq(e.High, a.High) &&
			floatEq(e.Low, a.Low) && floatEq(e.Close, a.Close) &&
			floatEq(e.Volume, a.Volume) && floatEq(e.LogReturn, a.LogReturn)
		assert.True(t, equal, "row %d differs: expected %+v, actual %+v", i, e, a)
	}
}

func floatEq(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func TestSyntheticSource(t *testing.T) {
	t.Run("reproducible for seed and ticker", func(t *testing.T) {
		a, err := NewSyntheticSource(7).Fetch(context.Background(), "AAPL", testFrom, testTo)
		require.NoError(t, err)
		b, err := NewSyntheticSource(7).Fetch(context.Background(), "AAPL", testFrom, testTo)
		require.NoError(t, err)
		assertRowsEqual(t, a.Rows, b.Rows)
	})

	t.Run("different tickers diverge", func(t *testing.T) {
		src := NewSyntheticSource(7)
		a, err := src.Fetch(context.Background(), "AAPL", testFrom, testTo)
		require.NoError(t, err)
		b, err := src.Fetch(context.Background(), "MSFT", testFrom, testTo)
		require.NoError(t, err)
		assert.NotEqual(t, a.Rows, b.Rows)
	})

	t.Run("different seeds diverge", func(t *testing.T) {
		a, err := NewSyntheticSource(1).Fetch(context.Background(), "AAPL", testFrom, testTo)
		require.NoError(t, err)
		b, err := NewSyntheticSource(2).Fetch(context.Background(), "AAPL", testFrom, testTo)
		require.NoError(t, err)
		assert.NotEqual(t, a.Rows, b.Rows)
	})

	t.Run("business days only with sane OHLC", func(t *testing.T) {
		table, err := NewSyntheticSource(7).Fetch(context.Background(), "TSLA", testFrom, testTo)
		require.NoError(t, err)

		assert.True(t, table.HasColumn(pricetable.ColClose))
		for _, row := range table.Rows {
			wd := row.Date.Weekday()
			assert.NotEqual(t, time.Saturday, wd)
			assert.NotEqual(t, time.Sunday, wd)

			assert.Greater(t, row.Close, 0.0)
			assert.GreaterOrEqual(t, row.High, row.Low)
			assert.GreaterOrEqual(t, row.High, row.Close)
			assert.LessOrEqual(t, row.Low, row.Close)
			assert.GreaterOrEqual(t, row.Volume, float64(syntheticMinVolume))
			assert.Less(t, row.Volume, float64(syntheticMaxVolume))
		}
	})

	t.Run("empty range fails", func(t *testing.T) {
		// A weekend-only window has no business days.
		sat := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
		sun := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
		_, err := NewSyntheticSource(7).Fetch(context.Background(), "AAPL", sat, sun)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	})

	t.Run("preprocesses cleanly", func(t *testing.T) {
		table, err := NewSyntheticSource(7).Fetch(context.Background(), "AAPL", testFrom, testTo)
		require.NoError(t, err)

		cleaned, warnings, err := pricetable.Preprocess(table)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.GreaterOrEqual(t, cleaned.Len(), pricetable.MinRows)
	})
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "ACME.csv",
		"Date,Open,High,Low,Close,Volume\n"+
			"2024-01-02,100,102,99,101,1000000\n"+
			"2024-01-03,101,103,100,102,1100000\n"+
			"2024-01-04,102,104,101,,1200000\n"+
			"2024-06-01,110,112,109,111,1300000\n")

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := NewCSVSource(filepath.Join(dir, "nope"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	})

	t.Run("reads canonical columns and range-filters", func(t *testing.T) {
		src, err := NewCSVSource(dir)
		require.NoError(t, err)

		table, err := src.Fetch(context.Background(), "ACME",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		require.Equal(t, 3, table.Len())
		assert.True(t, table.HasColumn(pricetable.ColDate))
		assert.True(t, table.HasColumn(pricetable.ColClose))
		assert.Equal(t, 101.0, table.Rows[0].Close)
		assert.True(t, math.IsNaN(table.Rows[2].Close), "empty cell is missing, not zero")
	})

	t.Run("unknown ticker fails", func(t *testing.T) {
		src, err := NewCSVSource(dir)
		require.NoError(t, err)

		_, err = src.Fetch(context.Background(), "NOPE", testFrom, testTo)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	})

	t.Run("unparseable dates are kept raw", func(t *testing.T) {
		writeCSV(t, dir, "RAW.csv",
			"Date,Close\n"+
				"2024-01-02,100\n"+
				"garbage,101\n")
		src, err := NewCSVSource(dir)
		require.NoError(t, err)

		table, err := src.Fetch(context.Background(), "RAW", testFrom, testTo)
		require.NoError(t, err)
		require.Equal(t, 2, table.Len())
		assert.True(t, table.Rows[1].Date.IsZero())
		assert.Equal(t, "garbage", table.Rows[1].DateText)
	})
}
