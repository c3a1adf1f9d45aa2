// Package sources provides market-data acquisition behind a single
// interface. Every source maps its vendor schema to the canonical
// Date,Open,High,Low,Close,Volume table before handing it to the analytics
// pipeline.
package sources

import (
	"context"
	"time"

	"riskcli/internal/pricetable"
)

// Source fetches raw OHLCV history for one instrument. The returned table
// is raw: it still goes through the preprocessing pipeline before analysis.
type Source interface {
	// Fetch returns the raw price table for ticker between from and to,
	// inclusive.
	Fetch(ctx context.Context, ticker string, from, to time.Time) (pricetable.Table, error)
	// Name returns the human-readable source label.
	Name() string
}

// DateFormat is the textual date layout used at the system boundary.
const DateFormat = "2006-01-02"
