package pricetable

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskcli/internal/errors"
)

// makeTable builds a well-formed table of n daily rows starting at start.
func makeTable(t *testing.T, n int, start time.Time) Table {
	t.Helper()
	table := NewTable()
	for i := 0; i < n; i++ {
		row := NewRow()
		row.Date = start.AddDate(0, 0, i)
		row.Open = 100 + float64(i)
		row.High = 101 + float64(i)
		row.Low = 99 + float64(i)
		row.Close = 100.5 + float64(i)
		row.Volume = 1_000_000
		table.Rows = append(table.Rows, row)
	}
	return table
}

// assertRowsEqual asserts the two row slices are equal, treating a NaN
// field as equal to NaN. assert.Equal relies on reflect.DeepEqual, which
// reports NaN != NaN, so slices carrying the NaN missing-value sentinel
// can never compare equal through it.
func assertRowsEqual(t *testing.T, expected, actual []Row) {
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

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	t.Run("empty table fails", func(t *testing.T) {
		table := NewTable()
		err := Validate(&table)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})

	t.Run("single row fails regardless of quality", func(t *testing.T) {
		table := makeTable(t, 1, testStart)
		err := Validate(&table)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})

	t.Run("29 rows fails, 30 passes", func(t *testing.T) {
		table := makeTable(t, 29, testStart)
		assert.Error(t, Validate(&table))

		table = makeTable(t, 30, testStart)
		assert.NoError(t, Validate(&table))
	})

	t.Run("missing Date column fails", func(t *testing.T) {
		table := makeTable(t, 40, testStart)
		table.Columns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}
		err := Validate(&table)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})

	t.Run("missing Close column fails", func(t *testing.T) {
		table := makeTable(t, 40, testStart)
		table.Columns = []string{ColDate, ColOpen, ColHigh, ColLow, ColVolume}
		assert.Error(t, Validate(&table))
	})

	t.Run("textual dates are coerced in place", func(t *testing.T) {
		table := makeTable(t, 30, testStart)
		table.Rows[5].Date = time.Time{}
		table.Rows[5].DateText = "2024-01-06"
		require.NoError(t, Validate(&table))
		assert.Equal(t, testStart.AddDate(0, 0, 5), table.Rows[5].Date)
	})

	t.Run("unparseable date fails validation", func(t *testing.T) {
		table := makeTable(t, 30, testStart)
		table.Rows[5].Date = time.Time{}
		table.Rows[5].DateText = "not-a-date"
		err := Validate(&table)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})

	t.Run("non-positive close fails validation", func(t *testing.T) {
		table := makeTable(t, 40, testStart)
		table.Rows[20].Close = 0
		err := Validate(&table)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))

		table = makeTable(t, 40, testStart)
		table.Rows[20].Close = -1.5
		assert.Error(t, Validate(&table))
	})

	t.Run("missing close is not a validation failure", func(t *testing.T) {
		// NaN marks a gap for the repair stage, not corrupt data.
		table := makeTable(t, 40, testStart)
		table.Rows[20].Close = math.NaN()
		assert.NoError(t, Validate(&table))
	})
}

func TestRepairMissing(t *testing.T) {
	t.Run("forward fill carries last value", func(t *testing.T) {
		table := makeTable(t, 30, testStart)
		table.Rows[10].Close = math.NaN()
		fixed, warnings := RepairMissing(table)
		assert.Empty(t, warnings)
		assert.Equal(t, table.Rows[9].Close, fixed.Rows[10].Close)
	})

	t.Run("leading gap is backfilled", func(t *testing.T) {
		table := makeTable(t, 30, testStart)
		table.Rows[0].Open = math.NaN()
		table.Rows[1].Open = math.NaN()
		fixed, warnings := RepairMissing(table)
		assert.Empty(t, warnings)
		assert.Equal(t, table.Rows[2].Open, fixed.Rows[0].Open)
		assert.Equal(t, table.Rows[2].Open, fixed.Rows[1].Open)
	})

	t.Run("unrecoverable rows are dropped with a warning", func(t *testing.T) {
		table := NewTable(ColDate, ColClose)
		for i := 0; i < 5; i++ {
			row := NewRow()
			row.Date = testStart.AddDate(0, 0, i)
			table.Rows = append(table.Rows, row) // Close missing everywhere
		}
		fixed, warnings := RepairMissing(table)
		assert.Zero(t, fixed.Len())
		require.Len(t, warnings, 1)
		assert.Equal(t, WarnRowsDropped, warnings[0].Kind)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		table := makeTable(t, 30, testStart)
		table.Rows[3].Close = math.NaN()
		_, _ = RepairMissing(table)
		assert.True(t, math.IsNaN(table.Rows[3].Close))
	})
}

func TestRepairConsistency(t *testing.T) {
	t.Run("duplicates keep first occurrence", func(t *testing.T) {
		table := makeTable(t, 30, testStart)
		dup := table.Rows[4]
		dup.Close = 42 // different value, same date, must lose
		table.Rows = append(table.Rows[:5], append([]Row{dup}, table.Rows[5:]...)...)

		fixed, warnings := RepairConsistency(table)
		assert.Equal(t, 30, fixed.Len())
		require.Len(t, warnings, 1)
		assert.Equal(t, WarnDuplicateDates, warnings[0].Kind)
		assert.Contains(t, warnings[0].Detail, "1 duplicate")
		assert.NotEqual(t, 42.0, fixed.Rows[4].Close)
	})

	t.Run("unsorted rows are sorted with a warning", func(t *testing.T) {
		table := makeTable(t, 30, testStart)
		table.Rows[0], table.Rows[20] = table.Rows[20], table.Rows[0]

		fixed, warnings := RepairConsistency(table)
		require.Len(t, warnings, 1)
		assert.Equal(t, WarnUnsortedDates, warnings[0].Kind)
		for i := 1; i < fixed.Len(); i++ {
			assert.True(t, fixed.Rows[i-1].Date.Before(fixed.Rows[i].Date))
		}
	})

	t.Run("large gaps are flagged but kept", func(t *testing.T) {
		table := makeTable(t, 30, testStart)
		table.Rows[29].Date = table.Rows[28].Date.AddDate(0, 0, 45)

		fixed, warnings := RepairConsistency(table)
		assert.Equal(t, 30, fixed.Len())
		require.Len(t, warnings, 1)
		assert.Equal(t, WarnLargeDateGaps, warnings[0].Kind)
	})

	t.Run("idempotent on clean data", func(t *testing.T) {
		table := makeTable(t, 30, testStart)
		table.Rows[0], table.Rows[7] = table.Rows[7], table.Rows[0]

		once, _ := RepairConsistency(table)
		twice, warnings := RepairConsistency(once)
		assert.Empty(t, warnings)
		assertRowsEqual(t, once.Rows, twice.Rows)
	})
}

func TestDeriveReturns(t *testing.T) {
	table := makeTable(t, 30, testStart)
	derived := DeriveReturns(table)

	assert.False(t, derived.Rows[0].HasReturn())
	for i := 1; i < derived.Len(); i++ {
		expected := math.Log(derived.Rows[i].Close / derived.Rows[i-1].Close)
		assert.InDelta(t, expected, derived.Rows[i].LogReturn, 1e-12)
	}
}

func TestLogReturnRoundTrip(t *testing.T) {
	// Compounding cumulative log-returns from the initial close must
	// reproduce the original close series.
	table := DeriveReturns(makeTable(t, 60, testStart))

	price := table.Rows[0].Close
	for i := 1; i < table.Len(); i++ {
		price *= math.Exp(table.Rows[i].LogReturn)
		assert.InDelta(t, table.Rows[i].Close, price, 1e-9)
	}
}

func TestPreprocess(t *testing.T) {
	t.Run("clean table yields no warnings", func(t *testing.T) {
		cleaned, warnings, err := Preprocess(makeTable(t, 40, testStart))
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, 40, cleaned.Len())
		assert.Len(t, cleaned.ValidReturns(), 39)
	})

	t.Run("duplicate date and missing close scenario", func(t *testing.T) {
		// 40 raw rows where one date appears twice: 39 distinct dates out.
		table := makeTable(t, 39, testStart)
		dup := table.Rows[10]
		table.Rows = append(table.Rows, dup) // duplicated date, out of order
		table.Rows[20].Close = math.NaN()    // repaired by forward fill
		require.Equal(t, 40, table.Len())

		cleaned, warnings, err := Preprocess(table)
		require.NoError(t, err)
		assert.Equal(t, 39, cleaned.Len())

		kinds := make([]WarningKind, 0, len(warnings))
		for _, w := range warnings {
			kinds = append(kinds, w.Kind)
		}
		assert.Contains(t, kinds, WarnDuplicateDates)

		// Strictly increasing dates, no duplicates
		for i := 1; i < cleaned.Len(); i++ {
			assert.True(t, cleaned.Rows[i-1].Date.Before(cleaned.Rows[i].Date))
		}
		// Filled close equals previous close
		assert.Equal(t, cleaned.Rows[19].Close, cleaned.Rows[20].Close)
	})

	t.Run("zero close fails instead of deriving infinite returns", func(t *testing.T) {
		table := makeTable(t, 40, testStart)
		table.Rows[20].Close = 0

		_, warnings, err := Preprocess(table)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
		assert.Empty(t, warnings)
	})

	t.Run("single row fails with validation error", func(t *testing.T) {
		_, _, err := Preprocess(makeTable(t, 1, testStart))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})

	t.Run("input table is left untouched", func(t *testing.T) {
		table := makeTable(t, 40, testStart)
		table.Rows[5].Close = math.NaN()
		_, _, err := Preprocess(table)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(table.Rows[5].Close))
		assert.False(t, table.Rows[39].HasReturn())
	})
}
