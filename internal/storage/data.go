package storage

import "time"

// RunRecord is the stored header of one saved run.
type RunRecord struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	SavedAt        time.Time `json:"savedAt"`
	TotalURLs      int       `json:"totalUrls"`
	TotalTestCases int       `json:"totalTestCases"`
	Passed         int       `json:"passed"`
	Failed         int       `json:"failed"`
	PassRate       float64   `json:"passRate"`
	Score          float64   `json:"score"`
	Grade          string    `json:"grade"`
}

// URLObservation is one stored probe of a page, across runs.
type URLObservation struct {
	RunID       string    `json:"runId"`
	URL         string    `json:"url"`
	StatusCode  int       `json:"statusCode"`
	Category    string    `json:"category"`
	LatencyMs   int64     `json:"latencyMs"`
	ErrorDetail string    `json:"errorDetail,omitempty"`
	ProbedAt    time.Time `json:"probedAt"`
}
