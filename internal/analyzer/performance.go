package analyzer

import (
	"context"
	"fmt"

	"github.com/rohmanhakim/webqa/internal/ledger"
)

const testTypePerformance = "Performance Analysis"

// Thresholds holds the fixed performance limits.
type Thresholds struct {
	LoadTimeMs  int64
	PageSizeKB  float64
	Requests    int
	DOMElements int
}

var DefaultThresholds = Thresholds{
	LoadTimeMs:  3000,
	PageSizeKB:  500,
	Requests:    50,
	DOMElements: 1500,
}

var (
	perfLoadTime = check{
		testType:    testTypePerformance,
		module:      "Page Load Time",
		description: "Measure total page load time",
		steps:       "1. Send HTTP request\n2. Measure response time\n3. Calculate load time",
	}
	perfPageSize = check{
		testType:    testTypePerformance,
		module:      "Page Size",
		description: "Calculate total page size",
		steps:       "1. Get response content\n2. Calculate size\n3. Check against threshold",
	}
	perfResources = check{
		testType:    testTypePerformance,
		module:      "Resource Count",
		description: "Count total page resources",
		steps:       "1. Parse HTML\n2. Count CSS, JS, and image files\n3. Calculate total",
	}
	perfDOM = check{
		testType:    testTypePerformance,
		module:      "DOM Size",
		description: "Count DOM elements",
		steps:       "1. Parse HTML\n2. Count elements\n3. Check against threshold",
	}
	perfCache = check{
		testType:    testTypePerformance,
		module:      "Cache Headers",
		description: "Check Cache-Control headers",
		steps:       "1. Check response headers\n2. Look for Cache-Control\n3. Analyze caching directives",
		expected:    "Cache-Control headers should be present",
	}
)

// Performance measures one server-rendered page load. There is no browser:
// load time is the HTTP transfer time of the HTML document.
type Performance struct {
	loader     *PageLoader
	thresholds Thresholds
}

func NewPerformance(loader *PageLoader) *Performance {
	return &Performance{loader: loader, thresholds: DefaultThresholds}
}

func (p *Performance) Name() string     { return "performance" }
func (p *Performance) TestType() string { return testTypePerformance }

func (p *Performance) Analyze(ctx context.Context, pageURL string) ([]ledger.Entry, error) {
	page, err := p.loader.Load(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return AnalyzePerformance(page, p.thresholds), nil
}

func AnalyzePerformance(page Page, t Thresholds) []ledger.Entry {
	entries := []ledger.Entry{
		loadTimeEntry(page, t),
		pageSizeEntry(page, t),
		resourceEntry(page, t),
		domEntry(page, t),
		cacheEntry(page),
	}
	return append(entries, scoreEntry(testTypePerformance, "Performance", page.URL, entries))
}

func loadTimeEntry(page Page, t Thresholds) ledger.Entry {
	c := perfLoadTime
	c.expected = fmt.Sprintf("Page should load within %dms", t.LoadTimeMs)
	ms := page.Duration.Milliseconds()
	if ms <= t.LoadTimeMs {
		return c.entry(page.URL, fmt.Sprintf("Total load time: %dms (Good)", ms), ledger.StatusPass, ledger.SeverityHigh)
	}
	return c.fail(page.URL, fmt.Sprintf("Total load time: %dms (Slow)", ms), ledger.SeverityHigh,
		"Optimize server response time, compress resources, use CDN")
}

func pageSizeEntry(page Page, t Thresholds) ledger.Entry {
	c := perfPageSize
	c.expected = fmt.Sprintf("Page should be under %.0fKB", t.PageSizeKB)
	kb := float64(page.Size) / 1024
	if kb <= t.PageSizeKB {
		return c.entry(page.URL, fmt.Sprintf("Page size: %.1fKB (Good)", kb), ledger.StatusPass, ledger.SeverityMedium)
	}
	return c.fail(page.URL, fmt.Sprintf("Page size: %.1fKB (Large)", kb), ledger.SeverityMedium,
		"Compress images, minify CSS/JS, remove unused code")
}

func resourceEntry(page Page, t Thresholds) ledger.Entry {
	c := perfResources
	c.expected = fmt.Sprintf("Total resources should be under %d", t.Requests)
	css := page.Doc.Find(`link[rel="stylesheet"]`).Length()
	js := page.Doc.Find("script[src]").Length()
	images := page.Doc.Find("img[src]").Length()
	total := css + js + images
	if total <= t.Requests {
		return c.entry(page.URL,
			fmt.Sprintf("Total resources: %d (CSS: %d, JS: %d, Images: %d)", total, css, js, images),
			ledger.StatusPass, ledger.SeverityMedium)
	}
	return c.fail(page.URL, fmt.Sprintf("Total resources: %d (Too many)", total), ledger.SeverityMedium,
		"Combine CSS/JS files, use image sprites, lazy load images")
}

func domEntry(page Page, t Thresholds) ledger.Entry {
	c := perfDOM
	c.expected = fmt.Sprintf("DOM should have fewer than %d elements", t.DOMElements)
	count := page.Doc.Find("*").Length()
	if count <= t.DOMElements {
		return c.entry(page.URL, fmt.Sprintf("DOM elements: %d (Good)", count), ledger.StatusPass, ledger.SeverityMedium)
	}
	e := c.entry(page.URL, fmt.Sprintf("DOM elements: %d (Too many)", count), ledger.StatusWarning, ledger.SeverityMedium)
	e.Resolution = "Reduce DOM depth and remove unnecessary wrapper elements"
	return e
}

func cacheEntry(page Page) ledger.Entry {
	if v := page.Headers["Cache-Control"]; v != "" {
		return perfCache.entry(page.URL, "Cache-Control: "+truncate(v, 100), ledger.StatusPass, ledger.SeverityMedium)
	}
	return perfCache.fail(page.URL, "No Cache-Control header found", ledger.SeverityMedium,
		"Add Cache-Control headers for static resources (e.g., max-age=31536000)")
}
