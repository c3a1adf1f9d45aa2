// Package pricetable turns raw OHLCV price tables into canonical,
// analysis-ready series.
//
// The preprocessing pipeline runs four ordered stages, each independently
// callable:
//
//  1. Structural validation (column presence, minimum size, date coercion)
//  2. Missing-value repair (forward fill, back fill, drop)
//  3. Consistency repair (de-duplication, sorting, gap detection)
//  4. Log-return derivation over the Close column
//
// A cleaned table holds strictly increasing dates with no duplicates and no
// missing values, plus a derived log-return per row (undefined for the first
// row). Non-fatal issues are reported as structured warnings alongside the
// result rather than raised as errors.
package pricetable
