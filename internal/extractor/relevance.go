package extractor

import (
	"net/url"
	"strings"
)

// IsRelevant decides whether a resolved link is worth keeping for a crawl
// rooted at seed. A link is relevant when its host equals the seed host or is
// a subdomain of it, when its path ends in a known page extension, or when its
// path does not end in "/".
func IsRelevant(link url.URL, seed url.URL) bool {
	seedHost := strings.ToLower(seed.Host)
	linkHost := strings.ToLower(link.Host)
	if linkHost == seedHost || strings.HasSuffix(linkHost, "."+seedHost) {
		return true
	}

	path := strings.ToLower(link.Path)
	for _, ext := range contentExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return !strings.HasSuffix(path, "/")
}
