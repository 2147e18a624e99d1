package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"walkforward/src/artifacts"
	"walkforward/src/datamodels"
	"walkforward/src/engine"
	"walkforward/src/pricedata"
)

// Runs one walk-forward momentum backtest from the command line:
//
//	backtest <params.yaml> [data_dir] [out_dir]
//
// and writes the artifact set (equity, windows, trades, metrics, chart)
// into the output directory.
func main() {
	initializeLogging()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(os.Args) < 2 {
		slog.Error("Usage: backtest <params.yaml> [data_dir] [out_dir]")
		os.Exit(1)
	}
	paramsPath := os.Args[1]

	dataDir := "data"
	if len(os.Args) > 2 {
		dataDir = os.Args[2]
	}
	outDir := "backtest_output"
	if len(os.Args) > 3 {
		outDir = os.Args[3]
	}

	slog.Info("Using params file", "path", paramsPath)

	params, err := datamodels.NewBacktestParamsFromFile(paramsPath)
	if err != nil {
		slog.Error("Failed to load backtest params", "error", err)
		os.Exit(1)
	}

	start, err := params.StartTime()
	if err != nil {
		slog.Error("Invalid start date", "error", err)
		os.Exit(1)
	}
	end, err := params.EndTime()
	if err != nil {
		slog.Error("Invalid end date", "error", err)
		os.Exit(1)
	}

	source := pricedata.NewCsvDirSource(dataDir)
	px, err := pricedata.Align(source, params.Tickers, start, end)
	if err != nil {
		slog.Error("Failed to align price data", "error", err)
		os.Exit(1)
	}

	result, err := engine.Run(ctx, px, *params)
	if err != nil {
		slog.Error("Backtest failed", "error", err)
		os.Exit(1)
	}

	writer := artifacts.NewWriter(outDir)
	if err := writer.WriteAll(result, params); err != nil {
		slog.Error("Failed to write artifacts", "error", err)
		os.Exit(1)
	}

	slog.Info("Backtest complete",
		"windows", len(result.Windows),
		"trades", len(result.Trades),
		"cagr", result.Metrics.CAGR,
		"annVol", result.Metrics.AnnVol,
		"sharpe", result.Metrics.Sharpe,
		"maxDrawdown", result.Metrics.MaxDrawdown,
		"outDir", outDir)
}

func initializeLogging() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}
	switch strings.ToLower(logLevel) {
	case "debug":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})))
	default:
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelInfo})))
	}
}
