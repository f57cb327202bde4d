// Package export models the lifecycle of an asynchronous report export.
package export

import (
	"errors"
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

// Status of an export job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
)

var (
	ErrInvalidTransition = errors.New("invalid export status transition")
	ErrNotReady          = errors.New("export not ready for download")
	ErrEmptyJobID        = errors.New("job id is required")
	ErrInvalidAthleteID  = errors.New("athlete id must be positive")
)

// Job is one export request and its outcome. A job only carries a file name
// once the encoded file is stored in full.
type Job struct {
	ID           string         `json:"id"`
	AthleteID    int            `json:"athlete_id"`
	Window       history.Window `json:"range"`
	IncludeChart bool           `json:"include_chart"`
	Notes        []string       `json:"notes,omitempty"`
	Status       Status         `json:"status"`
	Error        string         `json:"error,omitempty"`
	FileName     string         `json:"file_name,omitempty"`
	FileSize     int            `json:"file_size,omitempty"`
	Pages        int            `json:"pages,omitempty"`
	RequestedAt  time.Time      `json:"requested_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
}

// Request is what a caller asks for. The service assigns the job id.
type Request struct {
	AthleteID    int
	Window       history.Window
	IncludeChart bool
	Notes        []string
}

// NewJob creates a pending job.
func NewJob(id string, athleteID int, w history.Window, includeChart bool, notes []string, now time.Time) Job {
	return Job{
		ID:           id,
		AthleteID:    athleteID,
		Window:       w,
		IncludeChart: includeChart,
		Notes:        notes,
		Status:       StatusPending,
		RequestedAt:  now,
	}
}

// Validate checks identity fields.
func (j *Job) Validate() error {
	if j.ID == "" {
		return ErrEmptyJobID
	}
	if j.AthleteID <= 0 {
		return ErrInvalidAthleteID
	}
	return nil
}

// MarkProcessing moves a pending job to processing.
func (j *Job) MarkProcessing() error {
	if j.Status != StatusPending {
		return ErrInvalidTransition
	}
	j.Status = StatusProcessing
	return nil
}

// MarkReady records a stored file. The download stays valid for ttl.
func (j *Job) MarkReady(fileName string, size, pages int, now time.Time, ttl time.Duration) error {
	if j.Status != StatusProcessing {
		return ErrInvalidTransition
	}
	exp := now.Add(ttl)
	j.Status = StatusReady
	j.FileName = fileName
	j.FileSize = size
	j.Pages = pages
	j.CompletedAt = &now
	j.ExpiresAt = &exp
	return nil
}

// MarkFailed records a failure; no file is attached.
func (j *Job) MarkFailed(err error, now time.Time) error {
	if j.Status != StatusPending && j.Status != StatusProcessing {
		return ErrInvalidTransition
	}
	j.Status = StatusFailed
	j.Error = err.Error()
	j.FileName = ""
	j.FileSize = 0
	j.CompletedAt = &now
	return nil
}

// Expire marks a ready job whose file is gone.
func (j *Job) Expire() {
	if j.Status == StatusReady {
		j.Status = StatusExpired
	}
}

// IsExpired reports whether the download window has passed at now.
func (j *Job) IsExpired(now time.Time) bool {
	return j.ExpiresAt != nil && now.After(*j.ExpiresAt)
}

// CanDownload is true for ready, unexpired jobs.
func (j *Job) CanDownload(now time.Time) bool {
	return j.Status == StatusReady && !j.IsExpired(now)
}

// Terminal reports whether the job will not change any more.
func (j *Job) Terminal() bool {
	return j.Status == StatusReady || j.Status == StatusFailed || j.Status == StatusExpired
}
