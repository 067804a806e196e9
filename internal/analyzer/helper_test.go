package analyzer_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/webqa/internal/analyzer"
	"github.com/rohmanhakim/webqa/internal/fetcher"
	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/stretchr/testify/require"
)

const testPageURL = "https://shop.example.com/products"

func newPage(t *testing.T, html string) analyzer.Page {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return analyzer.Page{
		URL:      testPageURL,
		Doc:      doc,
		Size:     uint64(len(html)),
		Duration: 120 * time.Millisecond,
		Headers:  map[string]string{},
	}
}

func newLoader() *analyzer.PageLoader {
	sink := &metadata.NoopSink{}
	return analyzer.NewPageLoader(fetcher.NewHtmlFetcher(sink, fetcher.WithTimeout(2*time.Second)), "webqa-test")
}

func htmlServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "max-age=60")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func byModule(entries []ledger.Entry, module string) (ledger.Entry, bool) {
	for _, e := range entries {
		if e.Module == module {
			return e, true
		}
	}
	return ledger.Entry{}, false
}

func mustModule(t *testing.T, entries []ledger.Entry, module string) ledger.Entry {
	t.Helper()
	e, ok := byModule(entries, module)
	require.True(t, ok, "no entry for module %q", module)
	return e
}
