package httpapi_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/webqa/internal/config"
	"github.com/rohmanhakim/webqa/internal/httpapi"
	"github.com/rohmanhakim/webqa/internal/logger"
	"github.com/rohmanhakim/webqa/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSite serves a home page linking to one good and one missing page.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body><a href="/about">About</a><a href="/gone">Gone</a></body></html>`))
		case "/about":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html lang="en"><body><button type="button" id="buy">Buy</button></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(site.Close)
	return site
}

type saverSpy struct {
	mu    sync.Mutex
	saved []session.Snapshot
}

func (s *saverSpy) SaveRun(ctx context.Context, snapshot session.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snapshot)
	return "run-1", nil
}

func newAPI(t *testing.T, opts ...httpapi.Option) *httptest.Server {
	t.Helper()
	cfg, err := config.WithDefault().
		WithMaxDepth(1).
		WithPolitenessDelay(0).
		WithCrawlTimeout(2 * time.Second).
		WithProbeTimeout(2 * time.Second).
		WithAnalyzers([]string{}).
		Build()
	require.NoError(t, err)

	clock := func() time.Time { return time.Date(2026, 3, 9, 14, 5, 7, 0, time.UTC) }
	opts = append([]httpapi.Option{httpapi.WithClock(clock)}, opts...)
	server := httptest.NewServer(httpapi.NewServer(cfg, logger.Discard(), opts...).Handler())
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func createSession(t *testing.T, api *httptest.Server) string {
	t.Helper()
	resp, body := do(t, http.MethodPost, api.URL+"/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]string
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created["sessionId"])
	return created["sessionId"]
}

func TestHealth(t *testing.T) {
	api := newAPI(t)

	resp, body := do(t, http.MethodGet, api.URL+"/healthz", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestUnknownSession(t *testing.T) {
	api := newAPI(t)

	resp, body := do(t, http.MethodGet, api.URL+"/sessions/nope/test-cases", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"session not found"}`, string(body))
}

func TestExtractThenRun(t *testing.T) {
	site := newSite(t)
	spy := &saverSpy{}
	api := newAPI(t, httpapi.WithRunStore(spy))
	id := createSession(t, api)

	resp, body := do(t, http.MethodPost, api.URL+"/sessions/"+id+"/extract-links", map[string]any{"url": site.URL + "/"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var extracted struct {
		Links      []string `json:"links"`
		TotalLinks int      `json:"totalLinks"`
	}
	require.NoError(t, json.Unmarshal(body, &extracted))
	assert.Equal(t, 2, extracted.TotalLinks)

	resp, body = do(t, http.MethodPost, api.URL+"/sessions/"+id+"/run", map[string]any{"analyzers": []string{"buttons"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var ran struct {
		RunID     string          `json:"runId"`
		Summary   session.Summary `json:"summary"`
		TestCases []struct {
			ID       string `json:"id"`
			TestType string `json:"testType"`
		} `json:"testCases"`
	}
	require.NoError(t, json.Unmarshal(body, &ran))

	assert.Equal(t, "run-1", ran.RunID)
	assert.Equal(t, 2, ran.Summary.TotalURLs)
	// one 404 link row plus the Not Run and Warning button rows
	assert.Equal(t, 1, ran.Summary.Statistics.Passed)
	assert.Equal(t, 3, ran.Summary.Statistics.Failed)
	require.Len(t, ran.TestCases, 4)
	assert.Equal(t, "TC0001", ran.TestCases[0].ID)
	assert.Equal(t, "Button Functionality", ran.TestCases[3].TestType)
	require.Len(t, spy.saved, 1)
	assert.Equal(t, id, spy.saved[0].SessionID)

	resp, body = do(t, http.MethodGet, api.URL+"/sessions/"+id+"/test-cases?testType=Link+Status+Check", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		TestCases []map[string]any `json:"testCases"`
	}
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Len(t, listed.TestCases, 2)
}

func TestRun_Errors(t *testing.T) {
	api := newAPI(t)
	id := createSession(t, api)

	resp, body := do(t, http.MethodPost, api.URL+"/sessions/"+id+"/run", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No URLs to test"}`, string(body))

	resp, _ = do(t, http.MethodPost, api.URL+"/sessions/"+id+"/run", map[string]any{
		"urls":      []string{"https://a.example"},
		"analyzers": []string{"spelling"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, http.MethodPost, api.URL+"/sessions/"+id+"/run", `{"urls":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid request body")
}

func TestExtractLinks_MissingURL(t *testing.T) {
	api := newAPI(t)
	id := createSession(t, api)

	resp, body := do(t, http.MethodPost, api.URL+"/sessions/"+id+"/extract-links", map[string]any{"url": "  "})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Please enter a website URL"}`, string(body))
}

func TestReport(t *testing.T) {
	site := newSite(t)
	api := newAPI(t)
	id := createSession(t, api)

	resp, _ := do(t, http.MethodPost, api.URL+"/sessions/"+id+"/run", map[string]any{
		"urls": []string{site.URL + "/about", site.URL + "/gone"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodGet, api.URL+"/sessions/"+id+"/report?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "webqa_report_20260309_140507.csv")
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "Test ID", records[0][0])

	resp, body = do(t, http.MethodGet, api.URL+"/sessions/"+id+"/report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "2026-03-09 14:05:07", doc["generatedAt"])

	resp, body = do(t, http.MethodGet, api.URL+"/sessions/"+id+"/report?format=xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Unsupported format: xlsx")
}

func TestLoadURLsClearAndDelete(t *testing.T) {
	site := newSite(t)
	api := newAPI(t)
	id := createSession(t, api)

	resp, body := do(t, http.MethodPost, api.URL+"/sessions/"+id+"/urls", map[string]any{
		"urls": []string{site.URL + "/about", site.URL + "/about/", ""},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `"totalLinks":1`))

	resp, _ = do(t, http.MethodPost, api.URL+"/sessions/"+id+"/run", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, api.URL+"/sessions/"+id+"/clear", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = do(t, http.MethodGet, api.URL+"/sessions/"+id+"/test-cases", nil)
	var listed struct {
		TestCases []map[string]any `json:"testCases"`
	}
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Empty(t, listed.TestCases)

	resp, _ = do(t, http.MethodDelete, api.URL+"/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, api.URL+"/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionsAreIsolated(t *testing.T) {
	site := newSite(t)
	api := newAPI(t)
	first := createSession(t, api)
	second := createSession(t, api)
	require.NotEqual(t, first, second)

	resp, _ := do(t, http.MethodPost, api.URL+"/sessions/"+first+"/run", map[string]any{"urls": []string{site.URL + "/about"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := do(t, http.MethodGet, api.URL+"/sessions/"+second+"/test-cases", nil)
	var listed struct {
		TestCases []map[string]any `json:"testCases"`
	}
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Empty(t, listed.TestCases)
}
