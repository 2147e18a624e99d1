package runs

import "errors"

// ErrRunNotFound means the requested run ID has no manifest in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrRunActive means the run is already executing in this process.
var ErrRunActive = errors.New("run is already executing")
