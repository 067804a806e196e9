package prober

import (
	"fmt"

	"github.com/rohmanhakim/webqa/internal/ledger"
)

const (
	TestTypeLinkStatus = "Link Status Check"
	moduleLinks        = "URL Validation"
	moduleErrors       = "Error Testing"
)

type outcome struct {
	status   ledger.Status
	severity ledger.Severity
}

var outcomes = map[Category]outcome{
	CategorySuccess:        {ledger.StatusPass, ledger.SeverityLow},
	CategoryRedirect:       {ledger.StatusPass, ledger.SeverityLow},
	CategoryClientError:    {ledger.StatusFail, ledger.SeverityHigh},
	CategoryServerError:    {ledger.StatusFail, ledger.SeverityCritical},
	CategoryTransportError: {ledger.StatusFail, ledger.SeverityCritical},
}

// Outcome returns the ledger status and severity a probe result maps to.
func Outcome(c Category) (ledger.Status, ledger.Severity) {
	o, ok := outcomes[c]
	if !ok {
		return ledger.StatusFail, ledger.SeverityCritical
	}
	return o.status, o.severity
}

// LedgerEntry converts a probe result into the test case that records it.
// Transport errors produce an error row; every other category a link row.
func LedgerEntry(r ProbeResult) ledger.Entry {
	if r.Category == CategoryTransportError {
		return errorEntry(r)
	}
	return linkEntry(r)
}

func linkEntry(r ProbeResult) ledger.Entry {
	status, severity := Outcome(r.Category)
	e := ledger.Entry{
		TestType:       TestTypeLinkStatus,
		Module:         moduleLinks,
		SubjectData:    r.RequestedURL,
		Description:    fmt.Sprintf("Check HTTP status code for URL: %s", r.RequestedURL),
		Preconditions:  "1. Network connectivity\n2. URL is accessible",
		Steps:          fmt.Sprintf("1. Send GET request to %s\n2. Wait for response\n3. Check status code", r.RequestedURL),
		ExpectedResult: "HTTP status code should be 200 OK",
		ActualResult: fmt.Sprintf("Status: %d %s, Response Time: %dms, Category: %s",
			r.StatusCode, r.StatusText, r.LatencyMs, r.Category.Label()),
		Status:   status,
		Severity: severity,
	}
	if r.FinalURL != "" {
		e.Comments = "Final URL: " + r.FinalURL
	}
	if status == ledger.StatusFail {
		e.Resolution = "Check URL correctness, server configuration, or network connectivity"
	}
	return e
}

func errorEntry(r ProbeResult) ledger.Entry {
	status, severity := Outcome(r.Category)
	return ledger.Entry{
		TestType:       TestTypeLinkStatus,
		Module:         moduleErrors,
		SubjectData:    r.RequestedURL,
		Description:    fmt.Sprintf("Check for error on URL: %s", r.RequestedURL),
		Preconditions:  "1. Network connectivity\n2. URL is accessible",
		Steps:          fmt.Sprintf("1. Send request to %s\n2. Wait for response\n3. Check for errors", r.RequestedURL),
		ExpectedResult: "Request should complete successfully",
		ActualResult:   fmt.Sprintf("Request failed with error: %s", r.ErrorDetail),
		Status:         status,
		Severity:       severity,
		Comments:       "Connection error or timeout",
		Resolution:     "1. Check network connectivity\n2. Verify URL is correct\n3. Check if server is reachable",
	}
}
