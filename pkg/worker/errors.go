package worker

import "errors"

// Pool errors are plain sentinels, not classified: they are either
// programming errors or a backpressure signal, never storage trouble.
var (
	ErrPoolNotStarted     = errors.New("worker pool not started")
	ErrPoolStopped        = errors.New("worker pool stopped")
	ErrPoolAlreadyStarted = errors.New("worker pool already started")
	ErrQueueFull          = errors.New("worker pool queue full")
	ErrNilProcessor       = errors.New("worker pool needs a process function")
	ErrStopTimeout        = errors.New("worker pool stop timed out")
)
