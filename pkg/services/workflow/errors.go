package workflow

import "errors"

var (
	// ErrBusy is returned when an operation is started while the previous one is still running.
	ErrBusy       = errors.New("workflow is busy")
	ErrClosed     = errors.New("workflow is closed")
	ErrNotEditing = errors.New("no transaction draft is open")
)

const (
	createFallback   = "Error creating transaction"
	analyzeFallback  = "Error analyzing transaction"
	trainingFallback = "Error training the model"
)
