// Package matchsim drives a running tracker with a synthetic match and
// checks that what the server reports agrees with what was sent.
package matchsim

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL       string        // Base URL of the service
	NumEvents     int           // Number of unique events to generate
	DuplicateRate float64       // Share of extra submissions that replay an id, 0..1
	Workers       int           // Number of concurrent submitters
	Timeout       time.Duration // HTTP request timeout
	Reset         bool          // Reset the match before submitting
	Verbose       bool          // Log every submission
}

// Event is one submission to POST /events.
type Event struct {
	EventID string `json:"event_id"`
	Team    string `json:"team"`
	Kind    string `json:"kind"`
}

// AckResponse is the body POST /events answers with.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated  int
	EventsSubmitted  int
	EventsRecorded   int
	EventsDuplicate  int
	EventsFailed     int
	ExpectedDupes    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	VerifiedTeams    int
	ServerEventCount int
}
