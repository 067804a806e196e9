package analyzer

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/webqa/internal/ledger"
)

const (
	testTypeButtons = "Button Functionality"
	maxButtons      = 10
)

const buttonSelector = `button[type="button"], button[type="submit"], ` +
	`input[type="button"], input[type="submit"], ` +
	`a[type="button"], a[type="submit"]`

var functionCall = regexp.MustCompile(`(\w+)\s*\(`)

var buttonClick = check{
	testType:    testTypeButtons,
	module:      "Click Event Inspection",
	description: "Inspect click behavior declared in markup",
	steps:       "1. Inspect button attributes\n2. Check for click handlers\n3. Analyze function calls",
	expected:    "Button should have proper click behavior",
}

// Buttons inventories the first buttons of a page for manual testing.
// Nothing is clicked; declared click behavior is inspected statically.
type Buttons struct {
	loader *PageLoader
}

func NewButtons(loader *PageLoader) *Buttons {
	return &Buttons{loader: loader}
}

func (b *Buttons) Name() string     { return "buttons" }
func (b *Buttons) TestType() string { return testTypeButtons }

func (b *Buttons) Analyze(ctx context.Context, pageURL string) ([]ledger.Entry, error) {
	page, err := b.loader.Load(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return AnalyzeButtons(page), nil
}

func AnalyzeButtons(page Page) []ledger.Entry {
	buttons := page.Doc.Find(buttonSelector)
	if buttons.Length() == 0 {
		return []ledger.Entry{{
			TestType:       testTypeButtons,
			Module:         "Button Testing",
			SubjectData:    page.URL,
			Description:    "Check for buttons on page",
			Preconditions:  "Page loads successfully",
			Steps:          "1. Load webpage\n2. Search for button elements\n3. Count found buttons",
			ExpectedResult: "Page should have interactive elements",
			ActualResult:   "No buttons found on page",
			Status:         ledger.StatusInfo,
			Severity:       ledger.SeverityLow,
			Comments:       "No button elements detected",
		}}
	}

	base, _ := url.Parse(page.URL)
	var entries []ledger.Entry
	buttons.Slice(0, min(buttons.Length(), maxButtons)).Each(func(idx int, s *goquery.Selection) {
		entries = append(entries, manualEntry(page.URL, s), clickEntry(page.URL, base, s, idx))
	})
	return entries
}

func manualEntry(pageURL string, s *goquery.Selection) ledger.Entry {
	text := buttonText(s)
	kind := goquery.NodeName(s)
	if kind == "input" {
		t, _ := s.Attr("type")
		kind = fmt.Sprintf("input[%s]", t)
	}
	return ledger.Entry{
		TestType:       testTypeButtons,
		Module:         "Button Testing",
		SubjectData:    fmt.Sprintf("%s - %s", pageURL, truncate(text, 50)),
		Description:    "Test button functionality: " + truncate(text, 100),
		Preconditions:  "1. Page loads successfully\n2. Button is visible",
		Steps:          fmt.Sprintf("1. Navigate to %s\n2. Locate button: %s\n3. Click the button", pageURL, truncate(text, 50)),
		ExpectedResult: "Button should perform its intended action",
		ActualResult:   fmt.Sprintf("Button found: %s with text: %s", kind, truncate(text, 100)),
		Status:         ledger.StatusNotRun,
		Severity:       ledger.SeverityMedium,
		Comments:       "Manual testing required for button functionality",
		Resolution:     "Test button manually to verify functionality",
	}
}

// clickEntry records whether the markup declares any click behavior:
// an onclick handler, a link target, a form action or a submit type.
func clickEntry(pageURL string, base *url.URL, s *goquery.Selection, idx int) ledger.Entry {
	id, ok := s.Attr("id")
	if !ok || id == "" {
		id = fmt.Sprintf("button_%d", idx)
	}
	onclick, _ := s.Attr("onclick")
	buttonType, _ := s.Attr("type")

	var details, target string
	switch {
	case onclick != "":
		details = "Will execute onclick: " + truncate(onclick, 50)
	case goquery.NodeName(s) == "a" && hasAttr(s, "href"):
		href, _ := s.Attr("href")
		target = resolveAgainst(base, href)
		details = "Will navigate to: " + target
	case buttonType == "submit" && s.ParentsFiltered("form").Length() > 0:
		action, _ := s.ParentsFiltered("form").First().Attr("action")
		target = resolveAgainst(base, action)
		details = "Will submit form to: " + target
	case buttonType == "submit":
		details = "Form button - will submit form"
	}

	parts := []string{fmt.Sprintf("Click will execute: %t", details != "")}
	if details == "" {
		parts = append(parts, "Execution details: No click handler detected")
	} else {
		parts = append(parts, "Execution details: "+details)
	}
	if names := functionNames(onclick); len(names) > 0 {
		parts = append(parts, "Function names: "+strings.Join(names, ", "))
	}
	if target != "" {
		parts = append(parts, "Redirected URL: "+target)
	}

	status := ledger.StatusPass
	if details == "" {
		status = ledger.StatusWarning
	}
	c := buttonClick
	c.module = fmt.Sprintf("%s - %s", buttonClick.module, id)
	e := c.entry(pageURL, strings.Join(parts, " | "), status, ledger.SeverityMedium)
	e.Comments = "Button: " + truncate(buttonText(s), 50)
	return e
}

func buttonText(s *goquery.Selection) string {
	var candidates []string
	if goquery.NodeName(s) == "input" {
		v, _ := s.Attr("value")
		candidates = append(candidates, v)
	} else {
		candidates = append(candidates, strings.TrimSpace(s.Text()))
	}
	label, _ := s.Attr("aria-label")
	title, _ := s.Attr("title")
	candidates = append(candidates, label, title)
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

func functionNames(script string) []string {
	var names []string
	for _, m := range functionCall.FindAllStringSubmatch(script, -1) {
		names = append(names, m[1])
	}
	return names
}

func resolveAgainst(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}

func hasAttr(s *goquery.Selection, name string) bool {
	_, ok := s.Attr(name)
	return ok
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
