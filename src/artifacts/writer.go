package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"walkforward/src/datamodels"
)

const dateLayout = "2006-01-02"

// chartValue is one point of the chart-series payload consumed by the
// reporting front end: x is unix seconds, y the chained equity value.
type chartValue struct {
	X int64   `json:"x"`
	Y float64 `json:"y"`
}

// Writer materializes one run's backtest result as files under a run
// directory: equity.csv, trades.csv, walkforward_windows.csv, metrics.csv,
// params_used.json, results.json and charts/equity.png.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) Dir() string {
	return w.dir
}

// WriteAll writes every artifact for the result. Partial output on error is
// acceptable; the run manifest records the failure.
func (w *Writer) WriteAll(result *datamodels.BacktestResult, params *datamodels.BacktestParams) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	if err := w.WriteParamsJSON(params); err != nil {
		return err
	}
	if err := w.WriteEquityCSV(result.Equity); err != nil {
		return err
	}
	if err := w.WriteWindowsCSV(result.Windows); err != nil {
		return err
	}
	if err := w.WriteTradesCSV(result.Trades); err != nil {
		return err
	}
	if err := w.WriteMetricsCSV(result.Metrics); err != nil {
		return err
	}
	if err := w.WriteResultsPayload(result); err != nil {
		return err
	}

	chart := NewEquityChart().
		WithTitle("Chained Out-of-Sample Equity").
		WithPoints(result.Equity).
		WithFileOutput(filepath.Join(w.dir, "charts", "equity.png"))
	return chart.Save()
}

func (w *Writer) WriteEquityCSV(equity []datamodels.EquityPoint) error {
	rows := make([][]string, 0, len(equity)+1)
	rows = append(rows, []string{"Date", "Equity"})
	for _, p := range equity {
		rows = append(rows, []string{p.Date.Format(dateLayout), formatFloat(p.Value)})
	}
	return w.writeCSV("equity.csv", rows)
}

func (w *Writer) WriteWindowsCSV(windows []datamodels.WindowRecord) error {
	rows := make([][]string, 0, len(windows)+1)
	rows = append(rows, []string{"window", "train_start", "train_end", "test_start", "test_end", "best_lookback", "train_sharpe"})
	for _, rec := range windows {
		rows = append(rows, []string{
			strconv.Itoa(rec.Window),
			rec.TrainStart.Format(dateLayout),
			rec.TrainEnd.Format(dateLayout),
			rec.TestStart.Format(dateLayout),
			rec.TestEnd.Format(dateLayout),
			strconv.Itoa(rec.BestLookback),
			formatFloat(rec.TrainSharpe),
		})
	}
	return w.writeCSV("walkforward_windows.csv", rows)
}

func (w *Writer) WriteTradesCSV(trades []datamodels.TradeRecord) error {
	rows := make([][]string, 0, len(trades)+1)
	rows = append(rows, []string{"date", "lookback", "selected", "turnover", "cost", "window"})
	for _, trade := range trades {
		rows = append(rows, []string{
			trade.Date.Format(dateLayout),
			strconv.Itoa(trade.Lookback),
			strings.Join(trade.Selected, ","),
			formatFloat(trade.Turnover),
			formatFloat(trade.Cost),
			strconv.Itoa(trade.Window),
		})
	}
	return w.writeCSV("trades.csv", rows)
}

func (w *Writer) WriteMetricsCSV(metrics datamodels.PerformanceMetrics) error {
	rows := [][]string{
		{"CAGR", "AnnVol", "Sharpe", "MaxDD"},
		{
			formatFloat(metrics.CAGR),
			formatFloat(metrics.AnnVol),
			formatFloat(metrics.Sharpe),
			formatFloat(metrics.MaxDrawdown),
		},
	}
	return w.writeCSV("metrics.csv", rows)
}

func (w *Writer) WriteParamsJSON(params *datamodels.BacktestParams) error {
	return w.writeJSON("params_used.json", params)
}

// WriteResultsPayload writes the chart-series payload: the equity curve keyed
// the way the downstream analyzer expects, plus the window records.
func (w *Writer) WriteResultsPayload(result *datamodels.BacktestResult) error {
	values := make([]chartValue, len(result.Equity))
	for i, p := range result.Equity {
		values[i] = chartValue{X: p.Date.Unix(), Y: p.Value}
	}
	payload := map[string]any{
		"Charts": map[string]any{
			"Strategy Equity": map[string]any{
				"Series": map[string]any{
					"Equity": map[string]any{"Values": values},
				},
			},
		},
		"WalkForward": map[string]any{
			"windows": result.Windows,
		},
	}
	return w.writeJSON("results.json", payload)
}

// WriteRunLog appends human-readable lines to run.log.txt.
func (w *Writer) WriteRunLog(lines ...string) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(w.dir, "run.log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.WriteString(time.Now().UTC().Format(time.RFC3339) + " " + line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeCSV(name string, rows [][]string) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	csvWriter := csv.NewWriter(f)
	for _, row := range rows {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func (w *Writer) writeJSON(name string, payload any) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	jsonBytes, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return os.WriteFile(filepath.Join(w.dir, name), jsonBytes, 0644)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
