package analyzer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/webqa/internal/ledger"
)

const (
	testTypeSEO = "SEO Analysis"

	titleMinRunes       = 50
	titleMaxRunes       = 60
	descriptionMinRunes = 150
	descriptionMaxRunes = 160
	minAltCoverage      = 90.0
	maxSEOURLLength     = 100
)

var (
	seoMetaDescription = check{
		testType:    testTypeSEO,
		module:      "Meta Description",
		description: "Check meta description length and content",
		steps:       "1. Find meta description tag\n2. Check length\n3. Analyze content",
		expected:    "Meta description should be 150-160 characters",
	}
	seoViewport = check{
		testType:    testTypeSEO,
		module:      "Viewport Meta Tag",
		description: "Check for viewport meta tag",
		steps:       "1. Find viewport meta tag\n2. Check content",
		expected:    "Page should have viewport meta tag for mobile responsiveness",
	}
	seoRobots = check{
		testType:    testTypeSEO,
		module:      "Robots Meta Tag",
		description: "Check robots meta tag",
		steps:       "1. Find robots meta tag\n2. Check directives",
		expected:    "Robots meta tag should allow indexing",
	}
	seoTitle = check{
		testType:    testTypeSEO,
		module:      "Page Title",
		description: "Check page title length and content",
		steps:       "1. Find title tag\n2. Check length\n3. Analyze content",
		expected:    "Title should be 50-60 characters",
	}
	seoHeadings = check{
		testType:    testTypeSEO,
		module:      "Heading Structure",
		description: "Check heading hierarchy",
		steps:       "1. Count all heading tags\n2. Check hierarchy\n3. Analyze structure",
		expected:    "Page should use proper heading hierarchy",
	}
	seoH1 = check{
		testType:    testTypeSEO,
		module:      "H1 Heading",
		description: "Check for single H1 heading",
		steps:       "1. Count H1 tags\n2. Verify only one exists\n3. Check content",
		expected:    "Page should have exactly one H1 heading",
	}
	seoImageAlt = check{
		testType:    testTypeSEO,
		module:      "Image Alt Text",
		description: "Check image alt attributes",
		steps:       "1. Find all images\n2. Check alt attributes\n3. Calculate percentage",
		expected:    "All images should have descriptive alt text",
	}
	seoURLLength = check{
		testType:    testTypeSEO,
		module:      "URL Length",
		description: "Check URL length",
		steps:       "1. Measure URL length\n2. Check if within limits",
		expected:    "URL should be short and descriptive",
	}
)

// SEO checks on-page search engine signals: title, meta tags, headings and
// image alt text. Thresholds are fixed.
type SEO struct {
	loader *PageLoader
}

func NewSEO(loader *PageLoader) *SEO {
	return &SEO{loader: loader}
}

func (s *SEO) Name() string     { return "seo" }
func (s *SEO) TestType() string { return testTypeSEO }

func (s *SEO) Analyze(ctx context.Context, pageURL string) ([]ledger.Entry, error) {
	page, err := s.loader.Load(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return AnalyzeSEO(page), nil
}

// AnalyzeSEO runs the SEO checks over an already loaded page.
func AnalyzeSEO(page Page) []ledger.Entry {
	var entries []ledger.Entry
	entries = append(entries, metaDescriptionEntry(page))
	entries = append(entries, viewportEntry(page))
	if content, ok := page.Doc.Find(`meta[name="robots"]`).First().Attr("content"); ok {
		entries = append(entries, seoRobots.entry(page.URL,
			"Robots meta tag found: "+content, ledger.StatusPass, ledger.SeverityLow))
	}
	entries = append(entries, titleEntry(page))
	entries = append(entries, headingEntries(page)...)
	entries = append(entries, imageAltEntry(page))
	entries = append(entries, urlLengthEntry(page.URL))
	return append(entries, scoreEntry(testTypeSEO, "SEO", page.URL, entries))
}

func metaDescriptionEntry(page Page) ledger.Entry {
	meta := page.Doc.Find(`meta[name="description"]`).First()
	if meta.Length() == 0 {
		c := seoMetaDescription
		c.description = "Check for meta description tag"
		c.expected = "Page should have meta description"
		return c.fail(page.URL, "No meta description found", ledger.SeverityHigh,
			"Add meta description tag with relevant page summary")
	}

	content, _ := meta.Attr("content")
	length := utf8.RuneCountInString(content)
	if length >= descriptionMinRunes && length <= descriptionMaxRunes {
		return seoMetaDescription.entry(page.URL,
			fmt.Sprintf("Meta description length: %d characters (Good)", length),
			ledger.StatusPass, ledger.SeverityMedium)
	}

	status := ledger.StatusWarning
	if length == 0 {
		status = ledger.StatusFail
	}
	e := seoMetaDescription.entry(page.URL,
		fmt.Sprintf("Meta description length: %d characters (Needs adjustment)", length),
		status, ledger.SeverityMedium)
	e.Resolution = "Optimize meta description to be 150-160 characters with relevant keywords"
	return e
}

func viewportEntry(page Page) ledger.Entry {
	if page.Doc.Find(`meta[name="viewport"]`).Length() > 0 {
		return seoViewport.entry(page.URL, "Viewport meta tag found", ledger.StatusPass, ledger.SeverityMedium)
	}
	return seoViewport.fail(page.URL, "No viewport meta tag found", ledger.SeverityMedium,
		"Add viewport meta tag: <meta name='viewport' content='width=device-width, initial-scale=1.0'>")
}

func titleEntry(page Page) ledger.Entry {
	title := page.Doc.Find("title").First()
	if title.Length() == 0 {
		c := seoTitle
		c.description = "Check for page title"
		c.expected = "Page must have a title tag"
		return c.fail(page.URL, "No title tag found", ledger.SeverityCritical,
			"Add descriptive title tag to the page")
	}

	text := strings.TrimSpace(title.Text())
	length := utf8.RuneCountInString(text)
	preview := truncateRunes(text, 50)
	if length >= titleMinRunes && length <= titleMaxRunes {
		return seoTitle.entry(page.URL,
			fmt.Sprintf("Title length: %d characters (Good): %s", length, preview),
			ledger.StatusPass, ledger.SeverityHigh)
	}

	status := ledger.StatusWarning
	if length == 0 {
		status = ledger.StatusFail
	}
	e := seoTitle.entry(page.URL,
		fmt.Sprintf("Title length: %d characters (Needs adjustment): %s", length, preview),
		status, ledger.SeverityHigh)
	e.Resolution = "Optimize title to be 50-60 characters with primary keywords first"
	return e
}

func headingEntries(page Page) []ledger.Entry {
	counts := make([]int, 7)
	total := 0
	for level := 1; level <= 6; level++ {
		counts[level] = page.Doc.Find(fmt.Sprintf("h%d", level)).Length()
		total += counts[level]
	}

	if total == 0 {
		return []ledger.Entry{seoHeadings.fail(page.URL, "No heading tags found", ledger.SeverityMedium,
			"Add heading tags (H1, H2, H3) to structure content")}
	}

	structureStatus := ledger.StatusPass
	if counts[1] == 0 {
		structureStatus = ledger.StatusWarning
	}
	entries := []ledger.Entry{seoHeadings.entry(page.URL,
		fmt.Sprintf("Total headings: %d (H1: %d, H2: %d, H3: %d)", total, counts[1], counts[2], counts[3]),
		structureStatus, ledger.SeverityMedium)}

	switch {
	case counts[1] == 1:
		entries = append(entries, seoH1.entry(page.URL, "Found exactly one H1 heading",
			ledger.StatusPass, ledger.SeverityHigh))
	case counts[1] > 1:
		entries = append(entries, seoH1.fail(page.URL,
			fmt.Sprintf("Found %d H1 headings (should be exactly one)", counts[1]), ledger.SeverityHigh,
			"Ensure only one H1 tag per page, representing main content"))
	default:
		entries = append(entries, seoH1.fail(page.URL, "No H1 heading found", ledger.SeverityHigh,
			"Add a descriptive H1 heading representing the main content"))
	}
	return entries
}

func imageAltEntry(page Page) ledger.Entry {
	images := page.Doc.Find("img")
	if images.Length() == 0 {
		return seoImageAlt.entry(page.URL, "No images found on page", ledger.StatusPass, ledger.SeverityLow)
	}

	withAlt := 0
	images.Each(func(_ int, img *goquery.Selection) {
		if alt, ok := img.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
			withAlt++
		}
	})

	coverage := percent(withAlt, images.Length())
	if coverage >= minAltCoverage {
		return seoImageAlt.entry(page.URL,
			fmt.Sprintf("%.1f%% of images have alt text (Good)", coverage),
			ledger.StatusPass, ledger.SeverityMedium)
	}
	return seoImageAlt.fail(page.URL,
		fmt.Sprintf("Only %.1f%% of images have alt text", coverage), ledger.SeverityMedium,
		"Add descriptive alt text to all images")
}

func urlLengthEntry(pageURL string) ledger.Entry {
	length := utf8.RuneCountInString(pageURL)
	if length <= maxSEOURLLength {
		return seoURLLength.entry(pageURL, fmt.Sprintf("URL length: %d characters (Good)", length),
			ledger.StatusPass, ledger.SeverityLow)
	}
	e := seoURLLength.entry(pageURL, fmt.Sprintf("URL length: %d characters (Too long)", length),
		ledger.StatusWarning, ledger.SeverityLow)
	e.Resolution = "Shorten URL by removing unnecessary parameters"
	return e
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
