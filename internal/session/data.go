package session

import (
	"time"

	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/prober"
)

// RunOptions tunes a single Run. Zero values fall back to the session config.
type RunOptions struct {
	// Analyzers overrides the configured analyzer names when non-nil.
	Analyzers []string
	Progress  prober.ProgressFunc
}

type Summary struct {
	SessionID      string                  `json:"sessionId"`
	TotalURLs      int                     `json:"totalUrls"`
	Statistics     ledger.Statistics       `json:"statistics"`
	WeightedScore  ledger.WeightedScore    `json:"weightedScore"`
	Categories     map[prober.Category]int `json:"categories"`
	AnalyzerErrors int                     `json:"analyzerErrors"`
}

// Snapshot is a point-in-time copy of a session. Nothing in it aliases
// session state.
type Snapshot struct {
	SessionID       string                       `json:"sessionId"`
	Links           []string                     `json:"links"`
	ProbeResults    []prober.ProbeResult         `json:"linkResults"`
	TestCases       []ledger.TestCase            `json:"testCases"`
	AnalyzerResults map[string][]ledger.TestCase `json:"analyzerResults"`
	Summary         Summary                      `json:"summary"`
	StartedAt       time.Time                    `json:"startedAt"`
	FinishedAt      time.Time                    `json:"finishedAt"`
}
