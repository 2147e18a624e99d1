package engine

import "errors"

var (
	// ErrInsufficientHistory means the aligned table cannot fit even one
	// train/test window. Raised before any simulation runs.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrNoWindows means the roll loop completed without producing a window.
	ErrNoWindows = errors.New("no walk-forward windows produced")
)
