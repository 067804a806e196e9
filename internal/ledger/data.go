package ledger

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPass       Status = "Pass"
	StatusFail       Status = "Fail"
	StatusBlocked    Status = "Blocked"
	StatusNotRun     Status = "Not Run"
	StatusInProgress Status = "In Progress"
	StatusWarning    Status = "Warning"
	StatusInfo       Status = "Info"
)

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

type Verdict string

const (
	VerdictPass Verdict = "Pass"
	VerdictFail Verdict = "Fail"
)

// verdicts is the only place that decides pass/fail. Warning and Info are
// deliberately Fail: only an explicit Pass counts toward the positive side.
var verdicts = map[Status]Verdict{
	StatusPass:       VerdictPass,
	StatusFail:       VerdictFail,
	StatusBlocked:    VerdictFail,
	StatusNotRun:     VerdictFail,
	StatusInProgress: VerdictFail,
	StatusWarning:    VerdictFail,
	StatusInfo:       VerdictFail,
}

// Verdict compares case-insensitively, so "pass" and "PASS" are VerdictPass.
func (s Status) Verdict() Verdict {
	status, ok := ParseStatus(string(s))
	if !ok {
		return VerdictFail
	}
	return verdicts[status]
}

var statusAliases = map[string]Status{
	"pass":        StatusPass,
	"passed":      StatusPass,
	"fail":        StatusFail,
	"failed":      StatusFail,
	"blocked":     StatusBlocked,
	"not run":     StatusNotRun,
	"notrun":      StatusNotRun,
	"in progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"warning":     StatusWarning,
	"info":        StatusInfo,
}

// ParseStatus maps a free-form status string, case-insensitively, onto the
// closed Status set. Unknown strings report false.
func ParseStatus(s string) (Status, bool) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return status, ok
}

var severityAliases = map[string]Severity{
	"critical": SeverityCritical,
	"high":     SeverityHigh,
	"medium":   SeverityMedium,
	"low":      SeverityLow,
	"info":     SeverityInfo,
}

func ParseSeverity(s string) (Severity, bool) {
	severity, ok := severityAliases[strings.ToLower(strings.TrimSpace(s))]
	return severity, ok
}

// Entry carries the caller-supplied fields of a test case.
// Zero values are replaced by defaults when recorded: Module "Unknown",
// Status Not Run, Severity Medium.
type Entry struct {
	TestType       string
	Module         string
	SubjectData    string
	Description    string
	Preconditions  string
	Steps          string
	ExpectedResult string
	ActualResult   string
	Status         Status
	Severity       Severity
	Comments       string
	Resolution     string
}

// TestCase is an immutable ledger record.
type TestCase struct {
	ID             string    `json:"id"`
	TestType       string    `json:"testType"`
	Module         string    `json:"module"`
	SubjectData    string    `json:"subjectData"`
	Description    string    `json:"description"`
	Preconditions  string    `json:"preconditions"`
	Steps          string    `json:"steps"`
	ExpectedResult string    `json:"expectedResult"`
	ActualResult   string    `json:"actualResult"`
	Status         Status    `json:"status"`
	Severity       Severity  `json:"severity"`
	Verdict        Verdict   `json:"verdict"`
	Comments       string    `json:"comments"`
	Resolution     string    `json:"resolution"`
	Timestamp      time.Time `json:"timestamp"`
}

// Statistics is the verdict-based aggregate. PassRate is a percentage.
type Statistics struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	PassRate float64 `json:"passRate"`
}
