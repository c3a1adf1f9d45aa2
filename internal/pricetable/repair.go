package pricetable

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// GapThresholdDays is the calendar-day gap between consecutive rows beyond
// which a warning is emitted. Gapped rows are flagged, never removed.
const GapThresholdDays = 30

// RepairMissing fills gaps in the numeric columns: forward fill carries the
// last known value, backward fill covers still-missing leading values, and
// rows that remain incomplete afterwards are dropped. A warning reports the
// dropped row count, if any.
func RepairMissing(t Table) (Table, []Warning) {
	out := t.Clone()
	fields := out.presentNumericFields()

	// Forward fill
	for _, f := range fields {
		last := math.NaN()
		for i := range out.Rows {
			v := f.get(&out.Rows[i])
			if math.IsNaN(*v) {
				*v = last
			} else {
				last = *v
			}
		}
	}

	// Backward fill for leading gaps
	for _, f := range fields {
		next := math.NaN()
		for i := len(out.Rows) - 1; i >= 0; i-- {
			v := f.get(&out.Rows[i])
			if math.IsNaN(*v) {
				*v = next
			} else {
				next = *v
			}
		}
	}

	// Drop rows that are still incomplete (whole column missing)
	kept := out.Rows[:0]
	dropped := 0
	for i := range out.Rows {
		complete := true
		for _, f := range fields {
			if math.IsNaN(*f.get(&out.Rows[i])) {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, out.Rows[i])
		} else {
			dropped++
		}
	}
	out.Rows = kept

	var warnings []Warning
	if dropped > 0 {
		warnings = append(warnings, Warning{
			Kind:   WarnRowsDropped,
			Detail: fmt.Sprintf("dropped %d rows with unrecoverable missing values", dropped),
		})
	}
	return out, warnings
}

// RepairConsistency enforces date consistency: duplicate dates are removed
// keeping the first occurrence, out-of-order rows are sorted, and large
// calendar gaps are flagged. This stage never fails; it only mutates the
// copy and warns. Running it twice yields the same table as running it once.
func RepairConsistency(t Table) (Table, []Warning) {
	out := t.Clone()
	var warnings []Warning

	// De-duplicate, keeping the first occurrence
	seen := make(map[time.Time]bool, len(out.Rows))
	kept := out.Rows[:0]
	duplicates := 0
	for i := range out.Rows {
		d := out.Rows[i].Date
		if seen[d] {
			duplicates++
			continue
		}
		seen[d] = true
		kept = append(kept, out.Rows[i])
	}
	out.Rows = kept
	if duplicates > 0 {
		warnings = append(warnings, Warning{
			Kind:   WarnDuplicateDates,
			Detail: fmt.Sprintf("removed %d duplicate dates, keeping first occurrence", duplicates),
		})
	}

	// Sort into non-decreasing date order if needed
	if !sort.SliceIsSorted(out.Rows, func(i, j int) bool {
		return out.Rows[i].Date.Before(out.Rows[j].Date)
	}) {
		sort.SliceStable(out.Rows, func(i, j int) bool {
			return out.Rows[i].Date.Before(out.Rows[j].Date)
		})
		warnings = append(warnings, Warning{
			Kind:   WarnUnsortedDates,
			Detail: "rows were out of date order and have been sorted",
		})
	}

	// Flag large calendar gaps between consecutive rows
	gaps := 0
	for i := 1; i < len(out.Rows); i++ {
		delta := out.Rows[i].Date.Sub(out.Rows[i-1].Date)
		if delta > GapThresholdDays*24*time.Hour {
			gaps++
		}
	}
	if gaps > 0 {
		warnings = append(warnings, Warning{
			Kind:   WarnLargeDateGaps,
			Detail: fmt.Sprintf("detected %d date gaps larger than %d days", gaps, GapThresholdDays),
		})
	}

	return out, warnings
}
