// Command quick-analysis prints the risk and return profile of a single
// instrument: summary statistics, normality, drawdown, and tail risk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"riskcli/internal/extract"
	"riskcli/internal/sources"
)

func main() {
	ticker := flag.String("ticker", "", "instrument ticker (required)")
	fromArg := flag.String("from", "", "start date YYYY-MM-DD (default two years ago)")
	toArg := flag.String("to", "", "end date YYYY-MM-DD (default today)")
	sourceName := flag.String("source", "synthetic", "data source: csv or synthetic")
	csvDir := flag.String("csv-dir", "", "directory with <TICKER>.csv files (csv source)")
	seed := flag.Uint64("seed", 1, "random seed (synthetic source)")
	flag.Parse()

	if *ticker == "" {
		fmt.Fprintln(os.Stderr, "usage: quick-analysis -ticker AAPL [-from 2022-01-01] [-to 2024-01-01] [-source csv -csv-dir data]")
		os.Exit(2)
	}

	// Keep stdout clean for the report; only warnings go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	to := time.Now().UTC()
	from := to.AddDate(-2, 0, 0)
	var err error
	if *fromArg != "" {
		if from, err = time.Parse(sources.DateFormat, *fromArg); err != nil {
			slog.Error("Invalid from date", "value", *fromArg, "error", err)
			os.Exit(1)
		}
	}
	if *toArg != "" {
		if to, err = time.Parse(sources.DateFormat, *toArg); err != nil {
			slog.Error("Invalid to date", "value", *toArg, "error", err)
			os.Exit(1)
		}
	}

	var source sources.Source
	switch *sourceName {
	case "csv":
		if source, err = sources.NewCSVSource(*csvDir); err != nil {
			slog.Error("Failed to open CSV source", "error", err)
			os.Exit(1)
		}
	case "synthetic":
		source = sources.NewSyntheticSource(*seed)
	default:
		slog.Error("Unknown source", "source", *sourceName)
		os.Exit(1)
	}

	ex := extract.New(source, slog.Default())
	series, err := ex.History(context.Background(), []string{*ticker}, from, to)
	if err != nil {
		slog.Error("Analysis failed", "ticker", *ticker, "error", err)
		os.Exit(1)
	}

	ts := series[0]
	fmt.Printf("%s\n", divider)
	fmt.Printf("  Instrument Analysis: %s\n", ts.Ticker())
	fmt.Printf("%s\n", divider)
	for _, field := range ts.Summary() {
		fmt.Printf("  %-28s %s\n", field.Key, field.Value)
	}
	fmt.Printf("%s\n", divider)
}

const divider = "============================================================"
