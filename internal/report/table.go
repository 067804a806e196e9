package report

import (
	"fmt"
	"io"

	"github.com/rodaine/table"
	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/prober"
	"github.com/rohmanhakim/webqa/internal/session"
)

var categoryOrder = []prober.Category{
	prober.CategorySuccess,
	prober.CategoryRedirect,
	prober.CategoryClientError,
	prober.CategoryServerError,
	prober.CategoryTransportError,
}

// PrintSummary writes the run totals, the per-category link counts and every
// failed test case as tables.
func PrintSummary(w io.Writer, snapshot session.Snapshot) {
	summary := snapshot.Summary
	score := summary.WeightedScore

	tbl := table.New("Metric", "Value").WithWriter(w)
	tbl.AddRow("Total URLs", summary.TotalURLs)
	tbl.AddRow("Test cases", summary.Statistics.Total)
	tbl.AddRow("Passed", summary.Statistics.Passed)
	tbl.AddRow("Failed", summary.Statistics.Failed)
	tbl.AddRow("Pass rate", fmt.Sprintf("%.1f%%", summary.Statistics.PassRate))
	tbl.AddRow("Weighted score", fmt.Sprintf("%.1f%% - %s", score.Score, score.Grade))
	tbl.AddRow("Analyzer errors", summary.AnalyzerErrors)
	tbl.Print()

	fmt.Fprintln(w)
	categories := table.New("Category", "Links").WithWriter(w)
	for _, c := range categoryOrder {
		categories.AddRow(c.Label(), summary.Categories[c])
	}
	categories.Print()

	var failed []ledger.TestCase
	for _, tc := range snapshot.TestCases {
		if tc.Status == ledger.StatusFail {
			failed = append(failed, tc)
		}
	}
	if len(failed) == 0 {
		return
	}

	fmt.Fprintln(w)
	failures := table.New("ID", "Module", "Severity", "Subject", "Actual Result").WithWriter(w)
	for _, tc := range failed {
		failures.AddRow(tc.ID, tc.Module, tc.Severity, tc.SubjectData, tc.ActualResult)
	}
	failures.Print()
}
