package robots

import (
	"bufio"
	"strings"
)

// Parse reads robots.txt content and resolves the rules that apply to
// userAgent. Consecutive User-agent lines share the rules that follow them.
// Sitemap and Crawl-delay lines are ignored.
func Parse(content string, userAgent string) RuleSet {
	groups := parseGroups(content)
	best := bestGroup(groups, productToken(userAgent))
	if best == nil {
		return RuleSet{}
	}
	return RuleSet{
		allows:    best.allows,
		disallows: best.disallows,
	}
}

func parseGroups(content string) []group {
	var groups []group
	var current *group

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)

		switch field {
		case "user-agent":
			if current == nil || !current.empty() {
				groups = append(groups, group{})
				current = &groups[len(groups)-1]
			}
			current.userAgents = append(current.userAgents, strings.ToLower(value))
		case "allow":
			// an empty Allow has no effect
			if current != nil && value != "" {
				current.allows = append(current.allows, value)
			}
		case "disallow":
			// an empty Disallow allows everything
			if current != nil && value != "" {
				current.disallows = append(current.disallows, value)
			}
		}
	}
	return groups
}

// bestGroup picks the group whose user agent is the longest prefix of token,
// falling back to the * group.
func bestGroup(groups []group, token string) *group {
	var best, wildcard *group
	bestLen := 0
	for i := range groups {
		for _, ua := range groups[i].userAgents {
			if ua == "*" {
				if wildcard == nil {
					wildcard = &groups[i]
				}
				continue
			}
			if strings.HasPrefix(token, ua) && len(ua) > bestLen {
				best = &groups[i]
				bestLen = len(ua)
			}
		}
	}
	if best != nil {
		return best
	}
	return wildcard
}

// productToken reduces "webqa/1.2 (+https://x)" to "webqa".
func productToken(userAgent string) string {
	token := strings.ToLower(strings.TrimSpace(userAgent))
	if idx := strings.IndexAny(token, "/ "); idx != -1 {
		token = token[:idx]
	}
	return token
}
