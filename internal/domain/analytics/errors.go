package analytics

import "errors"

// ErrEmptyRoster is returned by aggregates that are undefined for an empty roster.
var ErrEmptyRoster = errors.New("empty roster")
