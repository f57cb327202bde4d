// Package testroster generates synthetic rosters and checks a running
// service against them.
package testroster

import (
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
)

// Config holds configuration for a verification run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Athletes   int           // Number of athletes to generate
	Seed       int64         // Generator seed, shared with the roster the service loaded
	RosterFile string        // Where the generated roster is written
	Generate   bool          // Only write the roster file and exit
	Reports    int           // Number of report exports to request
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Enable verbose logging
}

// Row is one row of GET /athletes.
type Row struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Sport          string `json:"sport"`
	WeeklyProgress int    `json:"weekly_progress"`
	Sessions       int    `json:"sessions"`
	Status         string `json:"status"`
	ProgressLevel  string `json:"progress_level"`
	SessionsLoad   string `json:"sessions_load"`
}

// List is the body of GET /athletes.
type List struct {
	Athletes []Row    `json:"athletes"`
	Total    int      `json:"total"`
	Sports   []string `json:"sports"`
}

// SubmitResponse is the body of POST /athletes/{id}/reports.
type SubmitResponse struct {
	Job       export.Job `json:"job"`
	Duplicate bool       `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	AthletesGenerated int
	AthletesChecked   int
	ReportsRequested  int
	ReportsReady      int
	ReportsFailed     int
	Duplicates        int
	BytesDownloaded   int
	Violations        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
