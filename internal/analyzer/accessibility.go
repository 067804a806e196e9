package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/webqa/internal/ledger"
)

const (
	testTypeAccessibility = "Accessibility Testing"
	minLabelCoverage      = 90.0
	maxReportedRoles      = 5
)

// validARIARoles is the WAI-ARIA role list.
var validARIARoles = map[string]struct{}{
	"alert": {}, "alertdialog": {}, "application": {}, "article": {}, "banner": {}, "button": {},
	"cell": {}, "checkbox": {}, "columnheader": {}, "combobox": {}, "complementary": {},
	"contentinfo": {}, "definition": {}, "dialog": {}, "directory": {}, "document": {},
	"feed": {}, "figure": {}, "form": {}, "grid": {}, "gridcell": {}, "group": {}, "heading": {},
	"img": {}, "link": {}, "list": {}, "listbox": {}, "listitem": {}, "log": {}, "main": {},
	"marquee": {}, "math": {}, "menu": {}, "menubar": {}, "menuitem": {}, "menuitemcheckbox": {},
	"menuitemradio": {}, "navigation": {}, "none": {}, "note": {}, "option": {}, "presentation": {},
	"progressbar": {}, "radio": {}, "radiogroup": {}, "region": {}, "row": {}, "rowgroup": {},
	"rowheader": {}, "scrollbar": {}, "search": {}, "searchbox": {}, "separator": {},
	"slider": {}, "spinbutton": {}, "status": {}, "switch": {}, "tab": {}, "table": {},
	"tablist": {}, "tabpanel": {}, "term": {}, "textbox": {}, "timer": {}, "toolbar": {},
	"tooltip": {}, "tree": {}, "treegrid": {}, "treeitem": {},
}

var (
	a11ySemantic = check{
		testType:    testTypeAccessibility,
		module:      "Semantic HTML",
		description: "Check for semantic HTML elements",
		steps:       "1. Parse HTML\n2. Count semantic elements\n3. Evaluate semantic structure",
		expected:    "Page should use semantic HTML elements",
	}
	a11yH1 = check{
		testType:    testTypeAccessibility,
		module:      "Heading H1",
		description: "Check for single H1 heading",
		steps:       "1. Find all H1 elements\n2. Count occurrences\n3. Check if exactly one",
		expected:    "Page should have exactly one H1 heading",
	}
	a11yRoles = check{
		testType:    testTypeAccessibility,
		module:      "ARIA Role Validation",
		description: "Check for invalid ARIA roles",
		steps:       "1. Find all role attributes\n2. Validate against ARIA role list\n3. Identify invalid roles",
		expected:    "ARIA roles should be valid WAI-ARIA roles",
	}
	a11yKeyboard = check{
		testType:    testTypeAccessibility,
		module:      "Keyboard Focus",
		description: "Check for keyboard focusable elements",
		steps:       "1. Find interactive elements\n2. Check if focusable\n3. Count focusable elements",
		expected:    "All interactive elements should be keyboard focusable",
	}
	a11yForms = check{
		testType:    testTypeAccessibility,
		module:      "Form Labels",
		description: "Check form input labels",
		steps:       "1. Find form inputs\n2. Check for associated labels\n3. Calculate labeled percentage",
		expected:    "All form inputs should have associated labels",
	}
	a11yImages = check{
		testType:    testTypeAccessibility,
		module:      "Image Alt Text",
		description: "Check image alternative text",
		steps:       "1. Find all images\n2. Check alt attributes\n3. Categorize images",
		expected:    "Informative images should have descriptive alt text",
	}
	a11yLanguage = check{
		testType:    testTypeAccessibility,
		module:      "Page Language",
		description: "Check page language declaration",
		steps:       "1. Find html tag\n2. Check lang attribute\n3. Verify language code",
		expected:    "Page should declare primary language",
	}
)

// Accessibility runs static accessibility heuristics. It is not a WCAG audit.
type Accessibility struct {
	loader *PageLoader
}

func NewAccessibility(loader *PageLoader) *Accessibility {
	return &Accessibility{loader: loader}
}

func (a *Accessibility) Name() string     { return "accessibility" }
func (a *Accessibility) TestType() string { return testTypeAccessibility }

func (a *Accessibility) Analyze(ctx context.Context, pageURL string) ([]ledger.Entry, error) {
	page, err := a.loader.Load(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return AnalyzeAccessibility(page), nil
}

func AnalyzeAccessibility(page Page) []ledger.Entry {
	var entries []ledger.Entry
	entries = append(entries, semanticEntry(page), accessibilityH1Entry(page))
	if e, ok := ariaRoleEntry(page); ok {
		entries = append(entries, e)
	}
	if e, ok := keyboardEntry(page); ok {
		entries = append(entries, e)
	}
	entries = append(entries, formLabelEntries(page)...)
	if e, ok := informativeImageEntry(page); ok {
		entries = append(entries, e)
	}
	entries = append(entries, languageEntry(page))
	return append(entries, scoreEntry(testTypeAccessibility, "Accessibility", page.URL, entries))
}

func semanticEntry(page Page) ledger.Entry {
	total := page.Doc.Find("header, nav, main, article, section, aside, footer").Length()
	if total > 0 {
		return a11ySemantic.entry(page.URL, fmt.Sprintf("Found %d semantic HTML elements", total),
			ledger.StatusPass, ledger.SeverityMedium)
	}
	return a11ySemantic.fail(page.URL, "No semantic HTML elements found", ledger.SeverityHigh,
		"Replace div/span with appropriate semantic elements (header, nav, main, article, section, footer)")
}

func accessibilityH1Entry(page Page) ledger.Entry {
	count := page.Doc.Find("h1").Length()
	switch {
	case count == 1:
		return a11yH1.entry(page.URL, "Found 1 H1 heading (Good)", ledger.StatusPass, ledger.SeverityHigh)
	case count > 1:
		return a11yH1.fail(page.URL, fmt.Sprintf("Found %d H1 headings (Should be exactly 1)", count),
			ledger.SeverityHigh, "Ensure only one H1 per page, representing main content")
	default:
		return a11yH1.fail(page.URL, "No H1 heading found", ledger.SeverityCritical,
			"Add a descriptive H1 heading at the beginning of main content")
	}
}

// ariaRoleEntry reports only when roles are present.
func ariaRoleEntry(page Page) (ledger.Entry, bool) {
	withRole := page.Doc.Find("[role]")
	if withRole.Length() == 0 {
		return ledger.Entry{}, false
	}

	invalid := make(map[string]struct{})
	withRole.Each(func(_ int, s *goquery.Selection) {
		role, _ := s.Attr("role")
		// role may list fallbacks; every token must be valid
		for _, token := range strings.Fields(strings.ToLower(role)) {
			if _, ok := validARIARoles[token]; !ok {
				invalid[token] = struct{}{}
			}
		}
	})

	if len(invalid) == 0 {
		return a11yRoles.entry(page.URL,
			fmt.Sprintf("All %d role attributes are valid", withRole.Length()),
			ledger.StatusPass, ledger.SeverityLow), true
	}

	roles := make([]string, 0, len(invalid))
	for role := range invalid {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	if len(roles) > maxReportedRoles {
		roles = roles[:maxReportedRoles]
	}
	return a11yRoles.fail(page.URL, "Invalid roles found: "+strings.Join(roles, ", "),
		ledger.SeverityMedium, "Use only valid ARIA roles from WAI-ARIA specification"), true
}

func keyboardEntry(page Page) (ledger.Entry, bool) {
	focusable := 0
	page.Doc.Find("a, button, input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "a":
			if _, ok := s.Attr("href"); ok {
				focusable++
			}
		case "input":
			if t, _ := s.Attr("type"); !strings.EqualFold(t, "hidden") {
				focusable++
			}
		default:
			focusable++
		}
	})
	if focusable == 0 {
		return ledger.Entry{}, false
	}
	return a11yKeyboard.entry(page.URL, fmt.Sprintf("Found %d focusable elements", focusable),
		ledger.StatusPass, ledger.SeverityHigh), true
}

func formLabelEntries(page Page) []ledger.Entry {
	forms := page.Doc.Find("form")
	if forms.Length() == 0 {
		c := a11yForms
		c.module = "Form Accessibility"
		c.expected = "Forms should be accessible to all users"
		return []ledger.Entry{c.entry(page.URL, "No forms found on page", ledger.StatusPass, ledger.SeverityLow)}
	}

	var entries []ledger.Entry
	forms.Each(func(idx int, form *goquery.Selection) {
		formID, ok := form.Attr("id")
		if !ok || formID == "" {
			formID = fmt.Sprintf("form_%d", idx)
		}
		controls := form.Find("input, select, textarea").FilterFunction(func(_ int, s *goquery.Selection) bool {
			t, _ := s.Attr("type")
			t = strings.ToLower(t)
			return t != "hidden" && t != "submit" && t != "button" && t != "reset"
		})
		if controls.Length() == 0 {
			return
		}

		labeled := 0
		controls.Each(func(_ int, s *goquery.Selection) {
			if hasLabel(page.Doc, s) {
				labeled++
			}
		})

		coverage := percent(labeled, controls.Length())
		subject := fmt.Sprintf("%s - %s", page.URL, formID)
		if coverage < minLabelCoverage {
			entries = append(entries, a11yForms.fail(subject,
				fmt.Sprintf("Only %.1f%% of inputs have labels", coverage), ledger.SeverityHigh,
				"Add labels for all form inputs using <label> elements or aria-label/aria-labelledby"))
			return
		}
		entries = append(entries, a11yForms.entry(subject,
			fmt.Sprintf("%.1f%% of inputs have labels", coverage), ledger.StatusPass, ledger.SeverityHigh))
	})
	return entries
}

func hasLabel(doc *goquery.Document, control *goquery.Selection) bool {
	if id, ok := control.Attr("id"); ok && id != "" {
		found := false
		doc.Find("label[for]").EachWithBreak(func(_ int, label *goquery.Selection) bool {
			if v, _ := label.Attr("for"); v == id && strings.TrimSpace(label.Text()) != "" {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	if v, ok := control.Attr("aria-label"); ok && strings.TrimSpace(v) != "" {
		return true
	}
	if v, ok := control.Attr("aria-labelledby"); ok && strings.TrimSpace(v) != "" {
		return true
	}
	return control.ParentsFiltered("label").Length() > 0
}

// informativeImageEntry reports only when alt coverage is too low.
func informativeImageEntry(page Page) (ledger.Entry, bool) {
	images := page.Doc.Find("img")
	if images.Length() == 0 {
		return ledger.Entry{}, false
	}

	informative := 0
	images.Each(func(_ int, img *goquery.Selection) {
		if alt, _ := img.Attr("alt"); strings.TrimSpace(alt) != "" {
			informative++
		}
	})

	coverage := percent(informative, images.Length())
	if coverage >= minAltCoverage {
		return ledger.Entry{}, false
	}
	return a11yImages.fail(page.URL, fmt.Sprintf("Only %.1f%% of images have proper alt text", coverage),
		ledger.SeverityHigh,
		"Add descriptive alt text to informative images, add empty alt to decorative images"), true
}

func languageEntry(page Page) ledger.Entry {
	lang, _ := page.Doc.Find("html").First().Attr("lang")
	if strings.TrimSpace(lang) != "" {
		return a11yLanguage.entry(page.URL, "Language declared: "+lang, ledger.StatusPass, ledger.SeverityHigh)
	}
	return a11yLanguage.fail(page.URL, "No language declared", ledger.SeverityHigh,
		"Add lang attribute to html tag (e.g., lang='en')")
}
