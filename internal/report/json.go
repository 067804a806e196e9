package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/prober"
	"github.com/rohmanhakim/webqa/internal/session"
)

const timestampLayout = "2006-01-02 15:04:05"

type jsonDocument struct {
	GeneratedAt     string                       `json:"generatedAt"`
	SessionID       string                       `json:"sessionId"`
	Summary         session.Summary              `json:"summary"`
	TestCases       []ledger.TestCase            `json:"testCases"`
	LinkResults     []prober.ProbeResult         `json:"linkResults"`
	AnalyzerResults map[string][]ledger.TestCase `json:"analyzerResults"`
}

type JSONExporter struct {
	now func() time.Time
}

func (e *JSONExporter) Extension() string {
	return "json"
}

func (e *JSONExporter) Export(w io.Writer, snapshot session.Snapshot) error {
	doc := jsonDocument{
		GeneratedAt:     e.now().Format(timestampLayout),
		SessionID:       snapshot.SessionID,
		Summary:         snapshot.Summary,
		TestCases:       nonNil(snapshot.TestCases),
		LinkResults:     nonNil(snapshot.ProbeResults),
		AnalyzerResults: snapshot.AnalyzerResults,
	}
	if doc.AnalyzerResults == nil {
		doc.AnalyzerResults = map[string][]ledger.TestCase{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return &ReportError{Message: err.Error(), Cause: ErrCauseEncodeFailure}
	}
	return nil
}

// nonNil keeps empty lists as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
