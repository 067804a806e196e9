package report_test

import (
	"time"

	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/prober"
	"github.com/rohmanhakim/webqa/internal/session"
)

var fixedTime = time.Date(2026, 3, 9, 14, 5, 7, 0, time.UTC)

func fixedClock() time.Time {
	return fixedTime
}

// newSnapshot builds a two-link snapshot with one analyzer row.
func newSnapshot() session.Snapshot {
	l := ledger.New(ledger.WithClock(fixedClock))

	ok := prober.ProbeResult{
		RequestedURL: "https://shop.example.com/cart",
		FinalURL:     "https://shop.example.com/cart",
		StatusCode:   200,
		StatusText:   "OK",
		Category:     prober.CategorySuccess,
		LatencyMs:    42,
		Timestamp:    fixedTime,
	}
	missing := prober.ProbeResult{
		RequestedURL: "https://shop.example.com/gone",
		FinalURL:     "https://shop.example.com/gone",
		StatusCode:   404,
		StatusText:   "Not Found",
		Category:     prober.CategoryClientError,
		LatencyMs:    17,
		Timestamp:    fixedTime,
	}
	l.Record(prober.LedgerEntry(ok))
	l.Record(prober.LedgerEntry(missing))
	button := l.Record(ledger.Entry{
		TestType:     "Button Functionality",
		Module:       "Button Testing",
		SubjectData:  "https://shop.example.com/cart",
		Steps:        "1. Locate button\n2. Click, and observe",
		ActualResult: `Button found: button with text: "Pay"`,
		Status:       ledger.StatusNotRun,
		Severity:     ledger.SeverityMedium,
	})

	cases := l.All()
	return session.Snapshot{
		SessionID:       "session-1",
		Links:           []string{ok.RequestedURL, missing.RequestedURL},
		ProbeResults:    []prober.ProbeResult{ok, missing},
		TestCases:       cases,
		AnalyzerResults: map[string][]ledger.TestCase{"buttons": {button}},
		Summary: session.Summary{
			SessionID:     "session-1",
			TotalURLs:     2,
			Statistics:    l.Statistics(),
			WeightedScore: ledger.ComputeWeightedScore(cases),
			Categories: map[prober.Category]int{
				prober.CategorySuccess:     1,
				prober.CategoryClientError: 1,
			},
		},
		StartedAt:  fixedTime,
		FinishedAt: fixedTime.Add(time.Second),
	}
}
