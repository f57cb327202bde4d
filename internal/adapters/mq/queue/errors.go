package queue

import "errors"

// ErrBackpressure is returned by callers when Enqueue rejects a job.
var ErrBackpressure = errors.New("export queue is full")
