package datamodels

import "time"

// TradeRecord captures one change of the held asset selection. Records are
// appended during simulation and never edited afterwards.
type TradeRecord struct {
	ID       uint      `json:"-" gorm:"primaryKey"`
	RunID    string    `json:"-" gorm:"index"`
	Window   int       `json:"window"`
	Date     time.Time `json:"date"`
	Lookback int       `json:"lookback"`
	Selected []string  `json:"selected" gorm:"serializer:json"` // ordered by score descending
	Turnover float64   `json:"turnover"`
	Cost     float64   `json:"cost"`
}

// WindowRecord captures one walk-forward roll. Start/end dates are inclusive.
type WindowRecord struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	RunID        string    `json:"-" gorm:"index"`
	Window       int       `json:"window"`
	TrainStart   time.Time `json:"train_start"`
	TrainEnd     time.Time `json:"train_end"`
	TestStart    time.Time `json:"test_start"`
	TestEnd      time.Time `json:"test_end"`
	BestLookback int       `json:"best_lookback"`
	TrainSharpe  float64   `json:"train_sharpe"`
}

// EquityPoint is one observation of the chained out-of-sample equity curve.
type EquityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// PerformanceMetrics are derived from the final chained equity curve and
// never mutated in place.
type PerformanceMetrics struct {
	CAGR        float64 `json:"cagr"`
	AnnVol      float64 `json:"ann_vol"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// BacktestResult is the full in-memory output of one walk-forward backtest.
type BacktestResult struct {
	Equity  []EquityPoint
	Windows []WindowRecord
	Trades  []TradeRecord
	Metrics PerformanceMetrics
}
