package urlutil

import (
	"net/url"
	"strings"
)

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Trailing slashes are removed from the path, including the root "/"
//   - Fragments are removed
//   - Query parameters are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// The scheme is kept as-is: http and https spellings of the same page produce
// different canonical URLs. Cross-scheme equivalence is decided by IsDuplicate.
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
func Canonicalize(sourceUrl url.URL) url.URL {
	// Create a copy to avoid mutating the original
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	canonical.Path = stripTrailingSlash(canonical.Path)
	canonical.RawPath = stripTrailingSlash(canonical.RawPath)

	canonical.Fragment = ""
	canonical.RawFragment = ""

	canonical.RawQuery = ""
	canonical.ForceQuery = false

	canonical.User = nil

	return canonical
}

// CanonicalKey returns the comparison key of a raw URL string:
// scheme + "://" + host + path, without trailing slash, query or fragment.
// Input that does not parse as an absolute URL falls back to its lowercased,
// trimmed form so that no input is ever rejected.
func CanonicalKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fallbackKey(trimmed)
	}
	canonical := Canonicalize(*parsed)
	return canonical.Scheme + "://" + canonical.Host + canonical.EscapedPath()
}

// IsDuplicate reports whether raw refers to the same page as any entry of existing.
// Two URLs are considered the same page when their canonical keys match, when they
// differ only by an http/https scheme swap, or when they are equal after lowercasing
// and trailing-slash trimming.
func IsDuplicate(raw string, existing []string) bool {
	loose := fallbackKey(raw)
	looseNoScheme := stripHTTPScheme(loose)
	key := CanonicalKey(raw)
	keyNoScheme := stripHTTPScheme(key)

	for _, candidate := range existing {
		other := fallbackKey(candidate)
		if loose == other || looseNoScheme == stripHTTPScheme(other) {
			return true
		}
		otherKey := CanonicalKey(candidate)
		if key == otherKey || keyNoScheme == stripHTTPScheme(otherKey) {
			return true
		}
	}
	return false
}

// fallbackKey lowercases, trims and removes trailing slashes.
func fallbackKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	return strings.TrimRight(key, "/")
}

func stripHTTPScheme(s string) string {
	lower := lowerASCII(s)
	switch {
	case strings.HasPrefix(lower, "https://"):
		return s[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		return s[len("http://"):]
	}
	return s
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func stripTrailingSlash(path string) string {
	for len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
