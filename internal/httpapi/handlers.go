package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rohmanhakim/webqa/internal/analyzer"
	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/report"
	"github.com/rohmanhakim/webqa/internal/session"
	"github.com/rohmanhakim/webqa/pkg/fileutil"
)

type extractLinksRequest struct {
	URL      string `json:"url"`
	MaxLinks int    `json:"maxLinks"`
}

type extractLinksResponse struct {
	Message    string   `json:"message"`
	Links      []string `json:"links"`
	TotalLinks int      `json:"totalLinks"`
}

type loadURLsRequest struct {
	URLs []string `json:"urls"`
}

type runRequest struct {
	URLs      []string `json:"urls"`
	Analyzers []string `json:"analyzers"`
}

type runResponse struct {
	Message   string            `json:"message"`
	RunID     string            `json:"runId,omitempty"`
	Summary   session.Summary   `json:"summary"`
	TestCases []ledger.TestCase `json:"testCases"`
}

type testCasesResponse struct {
	TestCases  []ledger.TestCase `json:"testCases"`
	Statistics ledger.Statistics `json:"statistics"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.newSession()
	s.addSession(sess)
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": sess.ID()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.removeSession(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExtractLinks(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req extractLinksRequest
	if !decode(w, r, &req) {
		return
	}

	links, err := sess.ExtractLinks(r.Context(), req.URL, req.MaxLinks)
	if errors.Is(err, session.ErrNoSeedProvided) {
		writeError(w, http.StatusBadRequest, "Please enter a website URL")
		return
	}
	if err != nil && links == nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, extractLinksResponse{
		Message:    fmt.Sprintf("Successfully extracted %d links", len(links)),
		Links:      preview(links, linkPreviewLimit),
		TotalLinks: len(links),
	})
}

func (s *Server) handleLoadURLs(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req loadURLsRequest
	if !decode(w, r, &req) {
		return
	}
	urls := sess.LoadManualURLs(req.URLs)
	writeJSON(w, http.StatusOK, extractLinksResponse{
		Message:    fmt.Sprintf("Loaded %d urls", len(urls)),
		Links:      preview(urls, linkPreviewLimit),
		TotalLinks: len(urls),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req runRequest
	if !decode(w, r, &req) {
		return
	}

	// an empty list falls back to the session's links
	urls := req.URLs
	if len(urls) == 0 {
		urls = nil
	}

	summary, err := sess.Run(r.Context(), urls, session.RunOptions{Analyzers: req.Analyzers})
	switch {
	case errors.Is(err, session.ErrNoURLs):
		writeError(w, http.StatusBadRequest, "No URLs to test")
		return
	case errors.Is(err, analyzer.ErrUnknownAnalyzer):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, session.ErrRunInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := runResponse{
		Message:   fmt.Sprintf("Tested %d urls", summary.TotalURLs),
		Summary:   summary,
		TestCases: preview(sess.TestCases(), testCasePreviewLimit),
	}
	if s.store != nil {
		runID, err := s.store.SaveRun(r.Context(), sess.Snapshot())
		if err != nil {
			s.logger.Error("failed to save run", "session", sess.ID(), "error", err)
		}
		resp.RunID = runID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTestCases(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	cases := sess.TestCases()
	if testType := r.URL.Query().Get("testType"); testType != "" {
		filtered := make([]ledger.TestCase, 0, len(cases))
		for _, tc := range cases {
			if tc.TestType == testType {
				filtered = append(filtered, tc)
			}
		}
		cases = filtered
	}
	writeJSON(w, http.StatusOK, testCasesResponse{
		TestCases:  cases,
		Statistics: sess.Summary().Statistics,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = s.cfg.ReportFormat()
	}
	exporter, err := report.NewExporter(format, s.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported format: %s", format))
		return
	}

	name := fileutil.TimestampedName("webqa_report", exporter.Extension(), s.now())
	switch exporter.Extension() {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := exporter.Export(w, sess.Snapshot()); err != nil {
		s.logger.Error("report export failed", "session", sess.ID(), "error", err)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := sess.Clear(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads an optional JSON body. An empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func preview[T any](items []T, limit int) []T {
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		return []T{}
	}
	return items
}
