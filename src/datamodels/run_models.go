package datamodels

import "time"

type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// RunManifest is the persisted description of one backtest run: its identity,
// lifecycle status and the parameters it was created with. Params left nil
// at creation are resolved against DefaultBacktestParams when the run starts.
type RunManifest struct {
	RunID     string          `json:"run_id" gorm:"primaryKey"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	StartedAt *time.Time      `json:"started_at,omitempty"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	Status    RunStatus       `json:"status"`
	Error     string          `json:"error,omitempty"`
	Params    *BacktestParams `json:"params,omitempty" gorm:"serializer:json"`
}

// RunStatusEvent is broadcast to websocket subscribers on every status
// transition.
type RunStatusEvent struct {
	RunID     string    `json:"run_id"`
	Status    RunStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
