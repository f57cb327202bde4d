package report

import "errors"

var (
	// ErrNoSessions is returned when a report is requested without a session log.
	ErrNoSessions = errors.New("report requires at least one session")
	// ErrRenderFailure wraps chart rasterization failures; the export is aborted.
	ErrRenderFailure = errors.New("render failure")
)
