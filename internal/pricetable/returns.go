package pricetable

import "math"

// DeriveReturns computes the log-return column over Close:
//
//	LogReturn[t] = ln(Close[t] / Close[t-1])
//
// The first row's return is left undefined (NaN). The price column is fixed
// to Close and not configurable.
func DeriveReturns(t Table) Table {
	out := t.Clone()
	for i := range out.Rows {
		if i == 0 {
			out.Rows[i].LogReturn = math.NaN()
			continue
		}
		out.Rows[i].LogReturn = math.Log(out.Rows[i].Close / out.Rows[i-1].Close)
	}
	return out
}
