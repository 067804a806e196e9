package analyzer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/webqa/internal/analyzer"
	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePerformance_FastSmallPage(t *testing.T) {
	page := newPage(t, `<html><head><link rel="stylesheet" href="a.css"><script src="a.js"></script></head>
		<body><img src="x.png"></body></html>`)
	page.Headers["Cache-Control"] = "max-age=3600"

	entries := analyzer.AnalyzePerformance(page, analyzer.DefaultThresholds)
	require.Len(t, entries, 6)

	for _, e := range entries[:5] {
		assert.Equal(t, ledger.StatusPass, e.Status, e.Module)
	}
	assert.Equal(t, "Total load time: 120ms (Good)", mustModule(t, entries, "Page Load Time").ActualResult)
	assert.Equal(t, "Total resources: 3 (CSS: 1, JS: 1, Images: 1)", mustModule(t, entries, "Resource Count").ActualResult)

	score := entries[5]
	assert.Equal(t, "Performance Score", score.Module)
	assert.Equal(t, ledger.StatusPass, score.Status)
	assert.Equal(t, ledger.SeverityMedium, score.Severity)
	assert.Equal(t, "Performance Score: 100.0% - A (Excellent). Passed: 5, Failed: 0, Warnings: 0", score.ActualResult)
}

func TestAnalyzePerformance_SlowHeavyPage(t *testing.T) {
	html := "<html><body>" + strings.Repeat("<div></div>", 20) + "</body></html>"
	page := newPage(t, html)
	page.Duration = 4 * time.Second
	page.Size = 600 * 1024

	thresholds := analyzer.DefaultThresholds
	thresholds.DOMElements = 10
	entries := analyzer.AnalyzePerformance(page, thresholds)

	assert.Equal(t, ledger.StatusFail, mustModule(t, entries, "Page Load Time").Status)
	assert.Equal(t, ledger.StatusFail, mustModule(t, entries, "Page Size").Status)
	assert.Equal(t, ledger.StatusWarning, mustModule(t, entries, "DOM Size").Status)
	assert.Equal(t, ledger.StatusFail, mustModule(t, entries, "Cache Headers").Status)

	// weights: load High 5 fail, size Medium 3 fail, resources Medium 3 pass,
	// DOM Medium 3 warning, cache Medium 3 fail -> 6/17
	score := entries[len(entries)-1]
	assert.Equal(t, ledger.StatusFail, score.Status)
	assert.Equal(t, ledger.SeverityHigh, score.Severity)
	assert.Equal(t, "Performance Score: 35.3% - F (Poor). Passed: 1, Failed: 3, Warnings: 1", score.ActualResult)
}
