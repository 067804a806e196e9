package cmd_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cmd "github.com/rohmanhakim/webqa/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body><a href="/docs">Docs</a><a href="/gone">Gone</a></body></html>`))
		case "/docs":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body><p>docs</p></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(site.Close)
	return site
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd.ResetFlags()
	t.Cleanup(cmd.ResetFlags)

	var stdout, stderr bytes.Buffer
	err := cmd.ExecuteWith(args, &stdout, &stderr)
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "webqa dev+none (built unknown)\n", out)
}

func TestCrawlCommand(t *testing.T) {
	site := newSite(t)

	out, err := execute(t, "crawl", site.URL+"/", "--max-depth", "1", "--delay", "0s", "-q")

	require.NoError(t, err)
	assert.Equal(t, []string{site.URL + "/docs", site.URL + "/gone"}, strings.Fields(out))
}

func TestCrawlCommand_NoSeed(t *testing.T) {
	_, err := execute(t, "crawl", "-q")

	assert.ErrorContains(t, err, "no seed url provided")
}

func TestProbeCommand(t *testing.T) {
	site := newSite(t)
	outputDir := t.TempDir()

	out, err := execute(t, "probe", site.URL+"/docs", "--url", site.URL+"/gone", "--url", site.URL+"/docs/",
		"--output-dir", outputDir, "--format", "csv", "-q")

	require.NoError(t, err)
	assert.Contains(t, out, "Total URLs")
	assert.Contains(t, out, "Status: 404 Not Found")
	assert.Contains(t, out, "Report written to")

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".csv"))
}

func TestProbeCommand_URLsFile(t *testing.T) {
	site := newSite(t)
	list := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(list, []byte("# pages\n"+site.URL+"/docs\n\n"+site.URL+"/gone\n"), 0644))

	out, err := execute(t, "probe", "--urls-file", list, "--output-dir", t.TempDir(), "-q")

	require.NoError(t, err)
	assert.Contains(t, out, "TC0002")
}

func TestProbeCommand_NoInput(t *testing.T) {
	_, err := execute(t, "probe", "-q")

	assert.ErrorIs(t, err, cmd.ErrNoInput)
}

func TestRunCommandWithHistory(t *testing.T) {
	site := newSite(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	out, err := execute(t, "run", site.URL+"/", "--max-depth", "1", "--delay", "0s",
		"--analyzer", "seo", "--output-dir", t.TempDir(), "--db-path", dbPath, "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "Weighted score")
	require.Contains(t, out, "Run saved as ")

	runID := strings.TrimSpace(out[strings.LastIndex(out, "Run saved as ")+len("Run saved as "):])

	out, err = execute(t, "history", "--db-path", dbPath, "-q")
	require.NoError(t, err)
	assert.Contains(t, out, runID)

	out, err = execute(t, "history", runID, "--db-path", dbPath, "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "TC0001")
	assert.Contains(t, out, "SEO Score")

	out, err = execute(t, "history", "--url", site.URL+"/gone/", "--db-path", dbPath, "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "404")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	_, err := execute(t, "history", "-q")

	assert.ErrorIs(t, err, cmd.ErrHistoryDisabled)
}
