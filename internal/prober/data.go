package prober

import (
	"time"
)

// Category is the five-way bucket a probe outcome falls into.
type Category string

const (
	CategorySuccess        Category = "Success"
	CategoryRedirect       Category = "Redirect"
	CategoryClientError    Category = "ClientError"
	CategoryServerError    Category = "ServerError"
	CategoryTransportError Category = "TransportError"
)

var categoryLabels = map[Category]string{
	CategorySuccess:        "Success",
	CategoryRedirect:       "Redirect",
	CategoryClientError:    "Client Error",
	CategoryServerError:    "Server Error",
	CategoryTransportError: "Error",
}

// Label is the human-readable category used in reports.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Categorize buckets a final HTTP status code. Codes outside 2xx-4xx,
// including 1xx, count as server errors.
func Categorize(statusCode int) Category {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return CategorySuccess
	case statusCode >= 300 && statusCode < 400:
		return CategoryRedirect
	case statusCode >= 400 && statusCode < 500:
		return CategoryClientError
	default:
		return CategoryServerError
	}
}

// ProbeResult is created once per probed URL and never modified.
// StatusCode is 0 when no response was received.
type ProbeResult struct {
	RequestedURL string    `json:"requestedUrl"`
	FinalURL     string    `json:"finalUrl"`
	StatusCode   int       `json:"statusCode,omitempty"`
	StatusText   string    `json:"statusText,omitempty"`
	Category     Category  `json:"statusCategory"`
	LatencyMs    int64     `json:"latencyMs"`
	ErrorDetail  string    `json:"errorDetail,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (r ProbeResult) HasStatus() bool {
	return r.StatusCode != 0
}

// IsHealthyPage reports whether the page qualifies for page analyzers:
// a Success category with status 200.
func (r ProbeResult) IsHealthyPage() bool {
	return r.Category == CategorySuccess && r.StatusCode == 200
}

// ProgressFunc observes probe completion. It is called from a single
// goroutine, in completion order.
type ProgressFunc func(completed, total int, result ProbeResult)
