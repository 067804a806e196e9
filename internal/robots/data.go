package robots

// group is one User-agent block of a robots.txt file.
type group struct {
	userAgents []string
	allows     []string
	disallows  []string
}

func (g group) empty() bool {
	return len(g.allows) == 0 && len(g.disallows) == 0
}

// RuleSet is the resolved set of rules for one host and one user agent.
// The zero value allows everything.
type RuleSet struct {
	allows    []string
	disallows []string
}

type DecisionReason string

const (
	AllowedByRobots    DecisionReason = "allowed_by_robots"
	DisallowedByRobots DecisionReason = "disallowed_by_robots"
	NoMatchingRules    DecisionReason = "no_matching_rules"
)

type Decision struct {
	Allowed bool
	Reason  DecisionReason
	// Rule is the pattern that decided, empty when no rule matched.
	Rule string
}
