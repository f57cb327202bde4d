package repository

import "errors"

var (
	ErrNotFound      = errors.New("athlete not found")
	ErrJobNotFound   = errors.New("export job not found")
	ErrDuplicateJob  = errors.New("export job already exists")
	ErrFileGone      = errors.New("export file expired or evicted")
	ErrInvalidRoster = errors.New("invalid roster")
	ErrRosterFormat  = errors.New("unsupported roster file format")
)
