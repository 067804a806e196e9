package robots

import "strings"

// Decide applies longest-match precedence: the matching rule with the
// longest pattern wins and Allow wins a tie.
func (r RuleSet) Decide(path string) Decision {
	if path == "" {
		path = "/"
	}
	decision := Decision{Allowed: true, Reason: NoMatchingRules}
	best := -1
	for _, pattern := range r.disallows {
		if matches(pattern, path) && len(pattern) > best {
			best = len(pattern)
			decision = Decision{Allowed: false, Reason: DisallowedByRobots, Rule: pattern}
		}
	}
	for _, pattern := range r.allows {
		if matches(pattern, path) && len(pattern) >= best {
			best = len(pattern)
			decision = Decision{Allowed: true, Reason: AllowedByRobots, Rule: pattern}
		}
	}
	return decision
}

// matches reports whether path matches a robots.txt pattern. * matches any
// run of characters and a trailing $ anchors the end of the path.
func matches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = strings.TrimSuffix(pattern, "$")
	}
	parts := strings.Split(pattern, "*")

	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	pos := len(parts[0])
	for _, part := range parts[1:] {
		idx := strings.Index(path[pos:], part)
		if idx == -1 {
			return false
		}
		pos += idx + len(part)
	}
	if !anchored {
		return true
	}
	if len(parts) > 1 {
		return strings.HasSuffix(path, parts[len(parts)-1])
	}
	return pos == len(path)
}
