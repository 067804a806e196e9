package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rohmanhakim/webqa/internal/analyzer"
	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	name string
}

func (s stubAnalyzer) Name() string { return s.name }

func (s stubAnalyzer) Analyze(ctx context.Context, pageURL string) ([]ledger.Entry, error) {
	return []ledger.Entry{{TestType: s.name, SubjectData: pageURL}}, nil
}

func TestRegistry_RegisterAndSelect(t *testing.T) {
	r := analyzer.NewRegistry()
	require.NoError(t, r.Register(stubAnalyzer{name: "fonts"}))
	require.NoError(t, r.Register(stubAnalyzer{name: "spelling"}))

	err := r.Register(stubAnalyzer{name: "fonts"})
	assert.ErrorIs(t, err, analyzer.ErrDuplicateAnalyzer)

	assert.Equal(t, []string{"fonts", "spelling"}, r.Names())

	selected, err := r.Select([]string{"spelling", "fonts", "spelling"})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "spelling", selected[0].Name())
	assert.Equal(t, "fonts", selected[1].Name())

	_, err = r.Select([]string{"fonts", "colors"})
	assert.ErrorIs(t, err, analyzer.ErrUnknownAnalyzer)
	assert.Contains(t, err.Error(), "colors")
}

func TestNewDefaultRegistry(t *testing.T) {
	r := analyzer.NewDefaultRegistry(newLoader())

	assert.Equal(t, []string{"accessibility", "buttons", "performance", "seo"}, r.Names())
}

func TestFailureEntry(t *testing.T) {
	seo := analyzer.NewSEO(newLoader())
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}

	e := analyzer.FailureEntry(seo, testPageURL, errors.New(string(long)))

	assert.Equal(t, "SEO Analysis", e.TestType)
	assert.Equal(t, ledger.StatusFail, e.Status)
	assert.Equal(t, ledger.SeverityMedium, e.Severity)
	assert.Equal(t, testPageURL, e.SubjectData)
	assert.Len(t, e.ActualResult, len("Error during seo analysis: ")+100)
}

func TestFailureEntry_UsesNameWithoutTestType(t *testing.T) {
	e := analyzer.FailureEntry(stubAnalyzer{name: "fonts"}, testPageURL, errors.New("boom"))

	assert.Equal(t, "fonts", e.TestType)
	assert.Equal(t, "Error during fonts analysis: boom", e.ActualResult)
}

func TestAnalyze_OverHTTP(t *testing.T) {
	server := htmlServer(t, map[string]string{
		"/": `<html lang="en"><head><title>Home</title></head><body><h1>Welcome</h1>
			<button type="submit">Buy</button></body></html>`,
	})
	r := analyzer.NewDefaultRegistry(newLoader())

	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			a, ok := r.Get(name)
			require.True(t, ok)

			entries, err := a.Analyze(context.Background(), server.URL+"/")
			require.NoError(t, err)
			assert.NotEmpty(t, entries)
			for _, e := range entries {
				assert.NotEmpty(t, e.TestType)
				assert.NotEmpty(t, e.Status)
			}
		})
	}
}

func TestAnalyze_UnreachablePageReturnsError(t *testing.T) {
	server := htmlServer(t, map[string]string{})

	entries, err := analyzer.NewSEO(newLoader()).Analyze(context.Background(), server.URL+"/missing")

	assert.Error(t, err)
	assert.Nil(t, entries)
}
