package service

import "errors"

var (
	// ErrNotStarted is returned by reads issued before Start or after Stop.
	ErrNotStarted = errors.New("service not started")
	// ErrInvalidOption marks an option combination Start cannot satisfy.
	ErrInvalidOption = errors.New("invalid service option")
)
