package analyzer

import (
	"fmt"

	"github.com/rohmanhakim/webqa/internal/ledger"
)

// check holds the fixed wording of one row; the outcome fields vary per page.
type check struct {
	testType    string
	module      string
	description string
	steps       string
	expected    string
}

func (c check) entry(subject, actual string, status ledger.Status, severity ledger.Severity) ledger.Entry {
	return ledger.Entry{
		TestType:       c.testType,
		Module:         c.module,
		SubjectData:    subject,
		Description:    c.description,
		Preconditions:  "Page must load successfully",
		Steps:          c.steps,
		ExpectedResult: c.expected,
		ActualResult:   actual,
		Status:         status,
		Severity:       severity,
	}
}

func (c check) fail(subject, actual string, severity ledger.Severity, resolution string) ledger.Entry {
	e := c.entry(subject, actual, ledger.StatusFail, severity)
	e.Resolution = resolution
	return e
}

// scoreEntry summarizes the rows of one analyzer run as a weighted score row.
func scoreEntry(testType, label, subject string, entries []ledger.Entry) ledger.Entry {
	cases := make([]ledger.TestCase, len(entries))
	for i, e := range entries {
		cases[i] = ledger.TestCase{Status: e.Status, Severity: e.Severity}
	}
	score := ledger.ComputeWeightedScore(cases)

	severity := ledger.SeverityMedium
	if score.Score < 70 {
		severity = ledger.SeverityHigh
	}

	c := check{
		testType:    testType,
		module:      label + " Score",
		description: fmt.Sprintf("Calculate overall %s score", label),
		steps:       "1. Collect all test results\n2. Weight by severity\n3. Calculate score",
		expected:    fmt.Sprintf("%s score should be above 80%%", label),
	}
	return c.entry(subject,
		fmt.Sprintf("%s Score: %.1f%% - %s. Passed: %d, Failed: %d, Warnings: %d",
			label, score.Score, score.Grade, score.Passed, score.Failed, score.Warnings),
		score.Grade.Status(), severity)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
