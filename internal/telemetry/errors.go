package telemetry

import "errors"

// ErrQueueClosed is returned by Queue.Append after Close.
var ErrQueueClosed = errors.New("telemetry: queue closed")
