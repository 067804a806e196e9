package analyzer_test

import (
	"strings"
	"testing"

	"github.com/rohmanhakim/webqa/internal/analyzer"
	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSEO_Title(t *testing.T) {
	tests := []struct {
		name     string
		head     string
		status   ledger.Status
		severity ledger.Severity
	}{
		{"missing", "", ledger.StatusFail, ledger.SeverityCritical},
		{"empty", "<title>  </title>", ledger.StatusFail, ledger.SeverityHigh},
		{"short", "<title>Shop</title>", ledger.StatusWarning, ledger.SeverityHigh},
		{"good", "<title>" + strings.Repeat("a", 55) + "</title>", ledger.StatusPass, ledger.SeverityHigh},
		{"long", "<title>" + strings.Repeat("a", 61) + "</title>", ledger.StatusWarning, ledger.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := analyzer.AnalyzeSEO(newPage(t, "<html><head>"+tt.head+"</head><body></body></html>"))

			title := mustModule(t, entries, "Page Title")
			assert.Equal(t, tt.status, title.Status)
			assert.Equal(t, tt.severity, title.Severity)
			assert.Equal(t, "SEO Analysis", title.TestType)
		})
	}
}

func TestAnalyzeSEO_MetaDescription(t *testing.T) {
	tests := []struct {
		name     string
		head     string
		status   ledger.Status
		severity ledger.Severity
	}{
		{"missing", "", ledger.StatusFail, ledger.SeverityHigh},
		{"empty content", `<meta name="description" content="">`, ledger.StatusFail, ledger.SeverityMedium},
		{"short", `<meta name="description" content="Buy shoes">`, ledger.StatusWarning, ledger.SeverityMedium},
		{"good", `<meta name="description" content="` + strings.Repeat("d", 155) + `">`, ledger.StatusPass, ledger.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := analyzer.AnalyzeSEO(newPage(t, "<html><head>"+tt.head+"</head></html>"))

			desc := mustModule(t, entries, "Meta Description")
			assert.Equal(t, tt.status, desc.Status)
			assert.Equal(t, tt.severity, desc.Severity)
		})
	}
}

func TestAnalyzeSEO_Headings(t *testing.T) {
	entries := analyzer.AnalyzeSEO(newPage(t, "<html><body><h1>A</h1><h1>B</h1><h2>C</h2></body></html>"))

	structure := mustModule(t, entries, "Heading Structure")
	assert.Equal(t, ledger.StatusPass, structure.Status)
	assert.Equal(t, "Total headings: 3 (H1: 2, H2: 1, H3: 0)", structure.ActualResult)

	h1 := mustModule(t, entries, "H1 Heading")
	assert.Equal(t, ledger.StatusFail, h1.Status)
	assert.Equal(t, ledger.SeverityHigh, h1.Severity)

	none := analyzer.AnalyzeSEO(newPage(t, "<html><body><p>text</p></body></html>"))
	assert.Equal(t, ledger.StatusFail, mustModule(t, none, "Heading Structure").Status)
	_, hasH1 := byModule(none, "H1 Heading")
	assert.False(t, hasH1)
}

func TestAnalyzeSEO_ImagesAndViewport(t *testing.T) {
	html := `<html><head><meta name="viewport" content="width=device-width"></head><body>
		<img src="a.png" alt="A"><img src="b.png" alt=""><img src="c.png">
	</body></html>`

	entries := analyzer.AnalyzeSEO(newPage(t, html))

	assert.Equal(t, ledger.StatusPass, mustModule(t, entries, "Viewport Meta Tag").Status)
	alt := mustModule(t, entries, "Image Alt Text")
	assert.Equal(t, ledger.StatusFail, alt.Status)
	assert.Equal(t, "Only 33.3% of images have alt text", alt.ActualResult)
}

func TestAnalyzeSEO_EndsWithScore(t *testing.T) {
	entries := analyzer.AnalyzeSEO(newPage(t, "<html><head><title>x</title></head></html>"))

	last := entries[len(entries)-1]
	assert.Equal(t, "SEO Score", last.Module)
	assert.True(t, strings.HasPrefix(last.ActualResult, "SEO Score: "))
}
