package prober_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/internal/prober"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/200", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/503", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/200", http.StatusFound)
	})
	mux.HandleFunc("/304", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func deadAddress(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()
	return addr
}

func newProber(opts ...prober.Option) *prober.Prober {
	return prober.NewProber(&metadata.NoopSink{}, opts...)
}

func TestProbeOne_Categories(t *testing.T) {
	server := statusServer(t)
	p := newProber(prober.WithTimeout(2 * time.Second))

	tests := []struct {
		path     string
		code     int
		category prober.Category
		status   ledger.Status
		severity ledger.Severity
	}{
		{"/200", 200, prober.CategorySuccess, ledger.StatusPass, ledger.SeverityLow},
		{"/404", 404, prober.CategoryClientError, ledger.StatusFail, ledger.SeverityHigh},
		{"/503", 503, prober.CategoryServerError, ledger.StatusFail, ledger.SeverityCritical},
		{"/304", 304, prober.CategoryRedirect, ledger.StatusPass, ledger.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := p.ProbeOne(context.Background(), server.URL+tt.path)

			assert.Equal(t, tt.code, result.StatusCode)
			assert.Equal(t, tt.category, result.Category)
			assert.Equal(t, http.StatusText(tt.code), result.StatusText)
			assert.Empty(t, result.ErrorDetail)
			assert.False(t, result.Timestamp.IsZero())

			entry := prober.LedgerEntry(result)
			assert.Equal(t, tt.status, entry.Status)
			assert.Equal(t, tt.severity, entry.Severity)
			assert.Equal(t, prober.TestTypeLinkStatus, entry.TestType)
			assert.Equal(t, "URL Validation", entry.Module)
		})
	}
}

func TestProbeOne_FollowsRedirects(t *testing.T) {
	server := statusServer(t)
	p := newProber()

	result := p.ProbeOne(context.Background(), server.URL+"/moved")

	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, prober.CategorySuccess, result.Category)
	assert.Equal(t, server.URL+"/moved", result.RequestedURL)
	assert.Equal(t, server.URL+"/200", result.FinalURL)
	assert.True(t, result.IsHealthyPage())
}

func TestProbeOne_TransportError(t *testing.T) {
	p := newProber(prober.WithTimeout(time.Second))

	result := p.ProbeOne(context.Background(), deadAddress(t))

	assert.Equal(t, prober.CategoryTransportError, result.Category)
	assert.False(t, result.HasStatus())
	assert.NotEmpty(t, result.ErrorDetail)
	assert.False(t, result.IsHealthyPage())

	entry := prober.LedgerEntry(result)
	assert.Equal(t, ledger.StatusFail, entry.Status)
	assert.Equal(t, ledger.SeverityCritical, entry.Severity)
	assert.Equal(t, "Error Testing", entry.Module)
	assert.Equal(t, "Connection error or timeout", entry.Comments)
	assert.Contains(t, entry.ActualResult, result.ErrorDetail)
}

func TestProbeOne_Timeout(t *testing.T) {
	server := statusServer(t)
	p := newProber(prober.WithTimeout(50 * time.Millisecond))

	result := p.ProbeOne(context.Background(), server.URL+"/slow")

	assert.Equal(t, prober.CategoryTransportError, result.Category)
	assert.Less(t, result.LatencyMs, int64(450))
}

func TestProbeOne_RecordsMetadata(t *testing.T) {
	server := statusServer(t)
	sink := &probeSpy{}
	p := prober.NewProber(sink)

	p.ProbeOne(context.Background(), server.URL+"/404")
	p.ProbeOne(context.Background(), deadAddress(t))

	assert.Equal(t, []string{"ClientError", "TransportError"}, sink.categories)
	assert.Equal(t, 1, sink.errors)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "http://example.com", prober.NormalizeURL("example.com"))
	assert.Equal(t, "https://example.com/x", prober.NormalizeURL("  https://example.com/x "))
	assert.Equal(t, "HTTP://example.com", prober.NormalizeURL("HTTP://example.com"))
	assert.Equal(t, "http://10.255.255.1", prober.NormalizeURL("10.255.255.1"))
}

func TestProbeAll_ScenarioThreeURLs(t *testing.T) {
	server := statusServer(t)
	p := newProber(prober.WithTimeout(2 * time.Second))

	urls := []string{server.URL + "/200", server.URL + "/404", deadAddress(t)}
	results := p.ProbeAll(context.Background(), urls, 3, nil)

	require.Len(t, results, 3)
	assert.Equal(t, prober.CategorySuccess, results[0].Category)
	assert.Equal(t, prober.CategoryClientError, results[1].Category)
	assert.Equal(t, prober.CategoryTransportError, results[2].Category)
}

func TestProbeAll_ExactlyOneResultPerURLForAnyPoolSize(t *testing.T) {
	server := statusServer(t)
	p := newProber()

	var urls []string
	for i := 0; i < 15; i++ {
		switch i % 3 {
		case 0:
			urls = append(urls, server.URL+"/200?i="+string(rune('a'+i)))
		case 1:
			urls = append(urls, server.URL+"/404?i="+string(rune('a'+i)))
		default:
			urls = append(urls, server.URL+"/503?i="+string(rune('a'+i)))
		}
	}

	for _, pool := range []int{-1, 0, 1, 2, 7, 20, 100} {
		var progressCalls atomic.Int64
		results := p.ProbeAll(context.Background(), urls, pool, func(completed, total int, _ prober.ProbeResult) {
			progressCalls.Add(1)
			assert.Equal(t, len(urls), total)
		})

		require.Len(t, results, len(urls), "pool %d", pool)
		assert.Equal(t, int64(len(urls)), progressCalls.Load())
		for i, r := range results {
			assert.Equal(t, urls[i], r.RequestedURL, "result must sit at its input position")
		}
	}
}

func TestProbeAll_DuplicateInputsProbedOnce(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	p := newProber()
	urls := []string{server.URL + "/a", server.URL + "/a", server.URL + "/b", server.URL + "/a"}
	results := p.ProbeAll(context.Background(), urls, 4, nil)

	require.Len(t, results, 4)
	assert.Equal(t, int64(2), hits.Load())
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[3])
}

func TestProbeAll_RespectsPoolSize(t *testing.T) {
	var inFlight, peak atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
	}))
	defer server.Close()

	var urls []string
	for i := 0; i < 12; i++ {
		urls = append(urls, server.URL+"/"+string(rune('a'+i)))
	}

	results := newProber().ProbeAll(context.Background(), urls, 3, nil)

	assert.Len(t, results, 12)
	assert.LessOrEqual(t, peak.Load(), int64(3))
}

func TestProbeAll_Empty(t *testing.T) {
	results := newProber().ProbeAll(context.Background(), nil, 5, nil)
	assert.Empty(t, results)
}

// probeSpy records probe categories and error counts
type probeSpy struct {
	metadata.NoopSink
	mu         sync.Mutex
	categories []string
	errors     int
}

func (s *probeSpy) RecordProbe(probeUrl string, httpStatus int, category string, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, category)
}

func (s *probeSpy) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
}
