package robots_test

import (
	"testing"

	"github.com/rohmanhakim/webqa/internal/robots"
	"github.com/stretchr/testify/assert"
)

const sample = `
# shop robots
User-agent: *
Disallow: /cart
Disallow: /search?
Allow: /cart/help

User-agent: webqa
User-agent: otherbot
Disallow: /admin
Allow: /admin/status$

User-agent: badbot
Disallow: /
`

func TestParse_SelectsGroupByProductToken(t *testing.T) {
	rules := robots.Parse(sample, "webqa/1.4.0")

	assert.False(t, rules.Decide("/admin/users").Allowed)
	assert.True(t, rules.Decide("/admin/status").Allowed)
	assert.False(t, rules.Decide("/admin/status/extra").Allowed)
	// the * group does not apply once a specific group matched
	assert.True(t, rules.Decide("/cart").Allowed)
}

func TestParse_FallsBackToWildcard(t *testing.T) {
	rules := robots.Parse(sample, "curious-crawler/2.0")

	tests := []struct {
		path    string
		allowed bool
		reason  robots.DecisionReason
	}{
		{"/", true, robots.NoMatchingRules},
		{"/cart", false, robots.DisallowedByRobots},
		{"/cart/checkout", false, robots.DisallowedByRobots},
		{"/cart/help", true, robots.AllowedByRobots},
		{"/search?q=shoes", false, robots.DisallowedByRobots},
		{"/search", true, robots.NoMatchingRules},
		{"/admin", true, robots.NoMatchingRules},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			decision := rules.Decide(tt.path)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

func TestParse_NoMatchingGroupAllowsEverything(t *testing.T) {
	rules := robots.Parse("User-agent: badbot\nDisallow: /\n", "webqa/dev")

	assert.True(t, rules.Decide("/anything").Allowed)
}

func TestParse_EmptyDisallowAllowsEverything(t *testing.T) {
	rules := robots.Parse("User-agent: *\nDisallow:\n", "webqa/dev")

	assert.True(t, rules.Decide("/anything").Allowed)
}

func TestDecide_Wildcards(t *testing.T) {
	rules := robots.Parse("User-agent: *\nDisallow: /*.pdf$\nDisallow: /tmp*/cache\n", "webqa")

	assert.False(t, rules.Decide("/docs/manual.pdf").Allowed)
	assert.True(t, rules.Decide("/docs/manual.pdf.html").Allowed)
	assert.False(t, rules.Decide("/tmp-1/cache/x").Allowed)
	assert.True(t, rules.Decide("/tmp-1/files").Allowed)
}

func TestDecide_AllowWinsTie(t *testing.T) {
	rules := robots.Parse("User-agent: *\nDisallow: /page\nAllow: /page\n", "webqa")

	decision := rules.Decide("/page")

	assert.True(t, decision.Allowed)
	assert.Equal(t, "/page", decision.Rule)
}

func TestDecide_ZeroRuleSet(t *testing.T) {
	var rules robots.RuleSet

	assert.True(t, rules.Decide("").Allowed)
}
