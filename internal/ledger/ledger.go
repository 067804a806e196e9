package ledger

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	defaultModule = "Unknown"
	maxFieldRunes = 500
)

// Ledger is the append-only, ID-assigned store of test cases for one session.
// One ledger must never be shared between sessions.
type Ledger struct {
	mu      sync.RWMutex
	cases   []TestCase
	counter int
	now     func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record allocates the next sequential ID, derives the verdict from the
// status and appends the resulting test case.
func (l *Ledger) Record(e Entry) TestCase {
	if e.Module == "" {
		e.Module = defaultModule
	}
	if e.Status == "" {
		e.Status = StatusNotRun
	} else if status, ok := ParseStatus(string(e.Status)); ok {
		e.Status = status
	}
	if e.Severity == "" {
		e.Severity = SeverityMedium
	} else if severity, ok := ParseSeverity(string(e.Severity)); ok {
		e.Severity = severity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.counter++
	tc := TestCase{
		ID:             fmt.Sprintf("TC%04d", l.counter),
		TestType:       e.TestType,
		Module:         e.Module,
		SubjectData:    truncate(e.SubjectData, maxFieldRunes),
		Description:    e.Description,
		Preconditions:  e.Preconditions,
		Steps:          e.Steps,
		ExpectedResult: e.ExpectedResult,
		ActualResult:   truncate(e.ActualResult, maxFieldRunes),
		Status:         e.Status,
		Severity:       e.Severity,
		Verdict:        e.Status.Verdict(),
		Comments:       e.Comments,
		Resolution:     e.Resolution,
		Timestamp:      l.now(),
	}
	l.cases = append(l.cases, tc)
	return tc
}

// Statistics returns total/passed/failed counts. PassRate is 0 for an empty ledger.
func (l *Ledger) Statistics() Statistics {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Statistics{Total: len(l.cases)}
	if stats.Total == 0 {
		return stats
	}
	for _, tc := range l.cases {
		if tc.Verdict == VerdictPass {
			stats.Passed++
		}
	}
	stats.Failed = stats.Total - stats.Passed
	stats.PassRate = float64(stats.Passed) / float64(stats.Total) * 100
	return stats
}

// Clear empties the ledger and resets the ID counter. Idempotent.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cases = nil
	l.counter = 0
}

// All returns a copy of every recorded test case in recording order.
func (l *Ledger) All() []TestCase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]TestCase, len(l.cases))
	copy(out, l.cases)
	return out
}

func (l *Ledger) ByTestType(testType string) []TestCase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []TestCase
	for _, tc := range l.cases {
		if tc.TestType == testType {
			out = append(out, tc)
		}
	}
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cases)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
