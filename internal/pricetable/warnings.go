package pricetable

// WarningKind identifies a category of non-fatal data-quality finding.
type WarningKind string

const (
	// WarnRowsDropped reports rows removed because values stayed missing
	// after forward and backward filling.
	WarnRowsDropped WarningKind = "ROWS_DROPPED"
	// WarnDuplicateDates reports rows removed for sharing a date with an
	// earlier row.
	WarnDuplicateDates WarningKind = "DUPLICATE_DATES"
	// WarnUnsortedDates reports that rows arrived out of date order and
	// were sorted.
	WarnUnsortedDates WarningKind = "UNSORTED_DATES"
	// WarnLargeDateGaps reports gaps of more than GapThresholdDays calendar
	// days between consecutive rows. The rows are kept.
	WarnLargeDateGaps WarningKind = "LARGE_DATE_GAPS"
)

// Warning is a structured non-fatal finding produced while cleaning a table.
// A clean run yields an empty warning list, never a sentinel entry.
type Warning struct {
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Detail
}
