package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rohmanhakim/webqa/internal/ledger"
)

/*
Responsibilities
- Define the contract every page check implements
- Keep a named registry of checks so new ones plug in without touching the session
- Turn an analyzer failure into a single ledger row

Analyzers are read-only over the page: they fetch and inspect, never click,
submit or execute scripts. An analyzer returns entries; it never records them.
*/

var (
	ErrUnknownAnalyzer   = errors.New("unknown analyzer")
	ErrDuplicateAnalyzer = errors.New("analyzer already registered")
)

// Analyzer inspects one healthy page and returns the test cases it derived.
// Implementations must be safe for concurrent use.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, pageURL string) ([]ledger.Entry, error)
}

// TestTyper is implemented by analyzers that label their rows with a test type
// other than their name.
type TestTyper interface {
	TestType() string
}

func testTypeOf(a Analyzer) string {
	if t, ok := a.(TestTyper); ok {
		return t.TestType()
	}
	return a.Name()
}

type Registry struct {
	mu        sync.RWMutex
	analyzers map[string]Analyzer
}

func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[string]Analyzer)}
}

func (r *Registry) Register(a Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.analyzers[a.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAnalyzer, a.Name())
	}
	r.analyzers[a.Name()] = a
	return nil
}

func (r *Registry) Get(name string) (Analyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyzers[name]
	return a, ok
}

// Names returns the registered analyzer names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.analyzers))
	for name := range r.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves names in the given order. Repeated names are returned once.
func (r *Registry) Select(names []string) ([]Analyzer, error) {
	seen := make(map[string]struct{}, len(names))
	selected := make([]Analyzer, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		a, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAnalyzer, name)
		}
		selected = append(selected, a)
	}
	return selected, nil
}

// NewDefaultRegistry registers every built-in analyzer over a shared page loader.
func NewDefaultRegistry(loader *PageLoader) *Registry {
	r := NewRegistry()
	for _, a := range []Analyzer{
		NewSEO(loader),
		NewAccessibility(loader),
		NewButtons(loader),
		NewPerformance(loader),
	} {
		_ = r.Register(a)
	}
	return r
}

const maxErrorRunes = 100

// FailureEntry is the single row recorded when an analyzer returns an error
// or panics on a page.
func FailureEntry(a Analyzer, pageURL string, err error) ledger.Entry {
	testType := testTypeOf(a)
	msg := []rune(err.Error())
	if len(msg) > maxErrorRunes {
		msg = msg[:maxErrorRunes]
	}
	return ledger.Entry{
		TestType:       testType,
		Module:         testType,
		SubjectData:    pageURL,
		Description:    fmt.Sprintf("Run %s checks on the page", a.Name()),
		Preconditions:  "Page must load successfully",
		Steps:          "1. Load webpage\n2. Extract page elements\n3. Evaluate checks",
		ExpectedResult: "Analysis completed successfully",
		ActualResult:   fmt.Sprintf("Error during %s analysis: %s", a.Name(), string(msg)),
		Status:         ledger.StatusFail,
		Severity:       ledger.SeverityMedium,
		Comments:       "Analysis failed due to error",
		Resolution:     "Check network connectivity and webpage accessibility",
	}
}
