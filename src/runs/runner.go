package runs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"walkforward/src/artifacts"
	"walkforward/src/database"
	"walkforward/src/datamodels"
	"walkforward/src/engine"
	"walkforward/src/pricedata"
	"walkforward/src/utils/errors"
)

// StatusListener is invoked on every run status transition.
type StatusListener func(event datamodels.RunStatusEvent)

// Runner executes backtest runs against an injected price source: resolve
// params, align prices, run the walk-forward engine, write artifacts, and
// record the outcome on the manifest. It has no retry logic and no
// partial-success mode; any escaping error marks the run failed.
type Runner struct {
	store    *FileRunStore
	source   pricedata.PriceSource
	db       database.WalkforwardDatabase
	listener StatusListener

	mu     sync.Mutex
	active map[string]bool
}

func NewRunner(store *FileRunStore, source pricedata.PriceSource) *Runner {
	return &Runner{store: store, source: source, active: make(map[string]bool)}
}

// WithDatabase additionally persists manifests, windows and trades.
func (r *Runner) WithDatabase(db database.WalkforwardDatabase) *Runner {
	r.db = db
	return r
}

func (r *Runner) WithStatusListener(listener StatusListener) *Runner {
	r.listener = listener
	return r
}

// Start claims the run and executes it in the background. A run executes at
// most once at a time; a second start while it is in flight returns
// ErrRunActive.
func (r *Runner) Start(runID string) error {
	if err := r.claim(runID); err != nil {
		return err
	}
	go func() {
		defer r.release(runID)
		if err := r.execute(context.Background(), runID); err != nil {
			slog.Error("Run execution failed", "runID", runID, "error", err)
		}
	}()
	return nil
}

// Execute runs the backtest for an existing run synchronously. The same
// in-flight guard as Start applies.
func (r *Runner) Execute(ctx context.Context, runID string) error {
	if err := r.claim(runID); err != nil {
		return err
	}
	defer r.release(runID)
	return r.execute(ctx, runID)
}

// claim marks the run as in flight; exactly one caller wins.
func (r *Runner) claim(runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[runID] {
		return ErrRunActive
	}
	r.active[runID] = true
	return nil
}

func (r *Runner) release(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, runID)
}

func (r *Runner) execute(ctx context.Context, runID string) error {
	manifest, err := r.store.Get(ctx, runID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	manifest.Status = datamodels.RunStatusRunning
	manifest.StartedAt = &now
	if err := r.transition(ctx, manifest); err != nil {
		return err
	}

	result, params, runErr := r.runBacktest(ctx, manifest)

	ended := time.Now().UTC()
	manifest.EndedAt = &ended
	if runErr != nil {
		manifest.Status = datamodels.RunStatusFailed
		manifest.Error = runErr.Error()
		if err := r.transition(ctx, manifest); err != nil {
			slog.Error("Failed to record run failure", "runID", runID, "error", err)
		}
		return runErr
	}

	manifest.Status = datamodels.RunStatusSucceeded
	manifest.Params = params
	if err := r.transition(ctx, manifest); err != nil {
		return err
	}

	if r.db != nil {
		if err := r.db.SaveWindows(ctx, runID, result.Windows); err != nil {
			slog.Error("Failed to persist window records", "runID", runID, "error", err)
		}
		if err := r.db.SaveTrades(ctx, runID, result.Trades); err != nil {
			slog.Error("Failed to persist trade records", "runID", runID, "error", err)
		}
	}

	slog.Info("Run completed",
		"runID", runID,
		"windows", len(result.Windows),
		"trades", len(result.Trades),
		"cagr", result.Metrics.CAGR,
		"sharpe", result.Metrics.Sharpe)

	return nil
}

func (r *Runner) runBacktest(ctx context.Context, manifest *datamodels.RunManifest) (*datamodels.BacktestResult, *datamodels.BacktestParams, error) {
	params := datamodels.DefaultBacktestParams()
	if manifest.Params != nil {
		params = manifest.Params.WithDefaults()
	}
	if err := params.Validate(); err != nil {
		return nil, nil, errors.Wrapf(err, "invalid params for run %s", manifest.RunID)
	}

	writer := artifacts.NewWriter(r.store.RunDir(manifest.RunID))
	if err := writer.WriteRunLog(fmt.Sprintf("walk-forward momentum run %s params=%+v", manifest.RunID, params)); err != nil {
		slog.Warn("Failed to write run log", "runID", manifest.RunID, "error", err)
	}

	start, err := params.StartTime()
	if err != nil {
		return nil, nil, err
	}
	end, err := params.EndTime()
	if err != nil {
		return nil, nil, err
	}

	px, err := pricedata.Align(r.source, params.Tickers, start, end)
	if err != nil {
		return nil, nil, err
	}

	result, err := engine.Run(ctx, px, params)
	if err != nil {
		return nil, nil, err
	}

	if err := writer.WriteAll(result, &params); err != nil {
		return nil, nil, err
	}

	return result, &params, nil
}

// transition updates the manifest everywhere interested: file store, the
// optional database (with a pg_notify broadcast), and the status listener.
func (r *Runner) transition(ctx context.Context, manifest *datamodels.RunManifest) error {
	if err := r.store.Update(ctx, manifest); err != nil {
		return err
	}
	if r.db != nil {
		if err := r.db.UpdateRun(ctx, manifest); err != nil {
			slog.Error("Failed to persist manifest", "runID", manifest.RunID, "error", err)
		}
		if err := r.db.NotifyRunStatus(ctx, manifest.RunID, string(manifest.Status)); err != nil {
			slog.Error("Failed to notify run status", "runID", manifest.RunID, "error", err)
		}
	}
	if r.listener != nil {
		r.listener(datamodels.RunStatusEvent{
			RunID:     manifest.RunID,
			Status:    manifest.Status,
			Error:     manifest.Error,
			Timestamp: time.Now().UTC(),
		})
	}
	return nil
}
