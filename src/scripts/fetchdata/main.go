package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"walkforward/src/config"
	"walkforward/src/datamodels"
	"walkforward/src/utils/general"
)

// Downloads daily OHLCV history for each default ticker from Stooq and
// writes one CSV per symbol into the data directory. Stooq serves US
// tickers under a ".us" suffix and responds 200 with an HTML error page
// when it doesn't know the symbol, so the header line is validated before
// anything is written.

const stooqBaseURL = "https://stooq.com/q/d/l/"

const expectedHeader = "Date,Open,High,Low,Close,Volume"

func main() {
	dataDir := "data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		slog.Error("Failed to create data directory", "error", err)
		os.Exit(1)
	}

	tickers := datamodels.DefaultBacktestParams().Tickers
	if extra := os.Getenv("FETCH_TICKERS"); extra != "" {
		tickers = strings.Split(extra, ",")
	}

	// bucket mirroring is optional and needs a loadable config
	var storageConfig *datamodels.StorageConfig
	if cfg, err := config.Load(); err == nil && cfg.StorageConfig.Bucket != "" {
		storageConfig = &cfg.StorageConfig
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 30 * time.Second}

	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			continue
		}
		url := fmt.Sprintf("%s?s=%s.us&i=d", stooqBaseURL, strings.ToLower(ticker))
		if ok, reason := general.IsValidURL(url); !ok {
			slog.Error("Bad download URL", "ticker", ticker, "reason", reason)
			os.Exit(1)
		}

		outPath := filepath.Join(dataDir, ticker+".csv")
		if err := downloadCSV(client, url, outPath); err != nil {
			slog.Error("Failed to fetch ticker", "ticker", ticker, "error", err)
			os.Exit(1)
		}
		slog.Info("Fetched ticker", "ticker", ticker, "path", outPath)

		if storageConfig != nil {
			objectPath := filepath.Join(storageConfig.DataPrefix, ticker+".csv")
			if err := general.CopyURLToBucket(ctx, url, storageConfig.Bucket, objectPath); err != nil {
				slog.Warn("Failed to mirror ticker to bucket", "ticker", ticker, "error", err)
			}
		}
	}
}

func downloadCSV(client *http.Client, url, outPath string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	// Stooq rejects requests without a browser-looking user agent
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	firstLine, _, _ := strings.Cut(string(body), "\n")
	if strings.TrimSpace(firstLine) != expectedHeader {
		// keep the payload around for inspection, Stooq error pages are HTML
		debugPath := outPath + ".debug"
		if writeErr := os.WriteFile(debugPath, body, 0644); writeErr == nil {
			slog.Warn("Wrote unexpected payload for inspection", "path", debugPath)
		}
		return fmt.Errorf("unexpected response header %q from %s", firstLine, url)
	}

	return os.WriteFile(outPath, body, 0644)
}
