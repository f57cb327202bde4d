package testroster

import "time"

// Polling configuration constants.
const (
	PollInterval = 200 * time.Millisecond
	ReportWait   = 2 * time.Minute
)

// Generator bounds.
const (
	maxProgress = 100
	maxSessions = 20
)

// File permission constants.
const (
	filePermission      = 0o600
	directoryPermission = 0o750
)
