package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/webqa/internal/analyzer"
	"github.com/rohmanhakim/webqa/internal/config"
	"github.com/rohmanhakim/webqa/internal/crawler"
	"github.com/rohmanhakim/webqa/internal/fetcher"
	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/internal/prober"
	"github.com/rohmanhakim/webqa/internal/robots"
	"github.com/rohmanhakim/webqa/pkg/limiter"
	"github.com/rohmanhakim/webqa/pkg/urlutil"
	"golang.org/x/sync/errgroup"
)

/*
 Session is the unit of isolation of one QA run.

 - Each session owns its ledger, links and results. Nothing is shared
   between sessions, so concurrent sessions never interleave test case IDs.
 - Run is the only pipeline: dedup → probe → record → analyze → record.
 - Only the session goroutine writes to the ledger. Workers return values.
 - An analyzer error or panic becomes exactly one failure row and never
   aborts the run.
 - Metadata emission is observational only.
*/

var (
	ErrNoURLs         = errors.New("no urls to test")
	ErrRunInProgress  = errors.New("a run is already in progress for this session")
	ErrNoSeedProvided = errors.New("no seed url provided")
)

type LinkCrawler interface {
	Crawl(ctx context.Context, seed string, maxDepth, maxLinks int) ([]string, error)
}

type URLProber interface {
	ProbeAll(ctx context.Context, urls []string, poolSize int, progress prober.ProgressFunc) []prober.ProbeResult
}

type Session struct {
	id           string
	cfg          config.Config
	metadataSink metadata.MetadataSink
	runFinalizer metadata.RunFinalizer
	crawler      LinkCrawler
	prober       URLProber
	registry     *analyzer.Registry
	ledger       *ledger.Ledger

	runMu sync.Mutex

	mu              sync.RWMutex
	links           []string
	probeResults    []prober.ProbeResult
	analyzerResults map[string][]ledger.TestCase
	analyzerErrors  int
	startedAt       time.Time
	finishedAt      time.Time
}

// NewSession wires a session with real HTTP components built from cfg.
// Every event is logged through a recorder tagged with the session id.
func NewSession(cfg config.Config, logger *slog.Logger) *Session {
	id := uuid.NewString()
	recorder := metadata.NewRecorder(logger, id)

	pageFetcher := fetcher.NewHtmlFetcher(
		recorder,
		fetcher.WithTimeout(cfg.CrawlTimeout()),
		fetcher.WithInsecureSkipVerify(cfg.InsecureSkipVerify()),
	)
	var crawlOpts []crawler.Option
	if cfg.RespectRobots() {
		robotsClient := fetcher.NewHTTPClient(cfg.CrawlTimeout(), cfg.InsecureSkipVerify())
		crawlOpts = append(crawlOpts, crawler.WithAdmissionPolicy(
			robots.NewChecker(recorder, robotsClient, cfg.UserAgent()),
		))
	}
	linkCrawler := crawler.NewCrawler(
		recorder,
		recorder,
		pageFetcher,
		limiter.NewPoliteness(cfg.PolitenessDelay()),
		cfg.UserAgent(),
		crawlOpts...,
	)
	urlProber := prober.NewProber(
		recorder,
		prober.WithTimeout(cfg.ProbeTimeout()),
		prober.WithInsecureSkipVerify(cfg.InsecureSkipVerify()),
		prober.WithUserAgent(cfg.UserAgent()),
	)
	registry := analyzer.NewDefaultRegistry(analyzer.NewPageLoader(pageFetcher, cfg.UserAgent()))

	return NewSessionWithDeps(id, cfg, recorder, recorder, linkCrawler, urlProber, registry)
}

// NewSessionWithDeps creates a Session with injected dependencies.
// An empty id is replaced by a random UUID.
func NewSessionWithDeps(
	id string,
	cfg config.Config,
	metadataSink metadata.MetadataSink,
	runFinalizer metadata.RunFinalizer,
	linkCrawler LinkCrawler,
	urlProber URLProber,
	registry *analyzer.Registry,
) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		id:              id,
		cfg:             cfg,
		metadataSink:    metadataSink,
		runFinalizer:    runFinalizer,
		crawler:         linkCrawler,
		prober:          urlProber,
		registry:        registry,
		ledger:          ledger.New(),
		analyzerResults: make(map[string][]ledger.TestCase),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Config() config.Config {
	return s.cfg
}

// ExtractLinks crawls from seed and stores the discovered links as the
// session's URL list. maxLinks <= 0 uses the configured limit.
func (s *Session) ExtractLinks(ctx context.Context, seed string, maxLinks int) ([]string, error) {
	if strings.TrimSpace(seed) == "" {
		seed = s.cfg.SeedURL()
	}
	if strings.TrimSpace(seed) == "" {
		return nil, ErrNoSeedProvided
	}
	if maxLinks <= 0 {
		maxLinks = s.cfg.MaxLinks()
	}

	links, err := s.crawler.Crawl(ctx, seed, s.cfg.MaxDepth(), maxLinks)
	if err != nil && links == nil {
		return nil, err
	}

	s.mu.Lock()
	s.links = links
	s.mu.Unlock()
	return copyStrings(links), err
}

// LoadManualURLs replaces the session's URL list with the deduplicated input.
// Blank entries are dropped.
func (s *Session) LoadManualURLs(urls []string) []string {
	cleaned := urlutil.RemoveDuplicates(nonBlank(urls))

	s.mu.Lock()
	s.links = cleaned
	s.mu.Unlock()
	return copyStrings(cleaned)
}

func (s *Session) Links() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStrings(s.links)
}

// Run tests urls, or the stored links when urls is nil. Previous results and
// the ledger are cleared first, so test case IDs restart at TC0001.
func (s *Session) Run(ctx context.Context, urls []string, opts RunOptions) (Summary, error) {
	if !s.runMu.TryLock() {
		return Summary{}, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	if urls == nil {
		urls = s.Links()
	}
	deduped := urlutil.RemoveDuplicates(nonBlank(urls))
	if len(deduped) == 0 {
		return Summary{}, ErrNoURLs
	}

	names := opts.Analyzers
	if names == nil {
		names = s.cfg.Analyzers()
	}
	analyzers, err := s.registry.Select(names)
	if err != nil {
		return Summary{}, err
	}

	runStartTime := time.Now()
	var stats metadata.RunStats
	defer func() {
		s.runFinalizer.RecordFinalRunStats(stats, time.Since(runStartTime))
	}()

	// 1. Reset previous results
	s.reset()
	s.mu.Lock()
	s.links = deduped
	s.startedAt = runStartTime
	s.mu.Unlock()

	// 2. Probe every URL
	results := s.prober.ProbeAll(ctx, deduped, s.cfg.ProbeConcurrency(), opts.Progress)

	// 3. Record one link row per result, in input order
	for _, r := range results {
		s.ledger.Record(prober.LedgerEntry(r))
		if r.Category == prober.CategoryTransportError {
			stats.TransportErrs++
		}
	}
	s.mu.Lock()
	s.probeResults = results
	s.mu.Unlock()

	// 4. Analyze the first healthy pages
	if ctx.Err() == nil {
		pages := healthyPages(results, s.cfg.MaxAnalyzerPages())
		for _, a := range analyzers {
			stats.AnalyzerErrs += s.runAnalyzer(ctx, a, pages)
		}
	}

	s.mu.Lock()
	s.analyzerErrors = stats.AnalyzerErrs
	s.finishedAt = time.Now()
	s.mu.Unlock()

	ledgerStats := s.ledger.Statistics()
	stats.TotalURLs = len(deduped)
	stats.TotalTestCases = ledgerStats.Total
	stats.Passed = ledgerStats.Passed
	stats.Failed = ledgerStats.Failed

	return s.Summary(), ctx.Err()
}

type analysisOutcome struct {
	entries []ledger.Entry
	err     error
}

// runAnalyzer fans one analyzer out over pages and records its rows in page
// order. It returns the number of pages the analyzer failed on.
func (s *Session) runAnalyzer(ctx context.Context, a analyzer.Analyzer, pages []string) int {
	outcomes := make([]analysisOutcome, len(pages))

	var g errgroup.Group
	g.SetLimit(max(1, s.cfg.AnalyzerConcurrency()))
	for i, page := range pages {
		g.Go(func() error {
			entries, err := safeAnalyze(ctx, a, page)
			outcomes[i] = analysisOutcome{entries: entries, err: err}
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	recorded := make([]ledger.TestCase, 0, len(pages))
	for i, outcome := range outcomes {
		entries := outcome.entries
		if outcome.err != nil {
			failures++
			s.metadataSink.RecordError(
				time.Now(),
				"session",
				"Session.runAnalyzer",
				metadata.CauseAnalyzerFailure,
				outcome.err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrAnalyzer, a.Name()),
					metadata.NewAttr(metadata.AttrURL, pages[i]),
				},
			)
			entries = []ledger.Entry{analyzer.FailureEntry(a, pages[i], outcome.err)}
		}
		for _, e := range entries {
			recorded = append(recorded, s.ledger.Record(e))
		}
	}

	s.mu.Lock()
	s.analyzerResults[a.Name()] = append(s.analyzerResults[a.Name()], recorded...)
	s.mu.Unlock()
	return failures
}

func safeAnalyze(ctx context.Context, a analyzer.Analyzer, page string) (entries []ledger.Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entries = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.Analyze(ctx, page)
}

// healthyPages returns up to limit requested URLs whose probe was a 200 success.
func healthyPages(results []prober.ProbeResult, limit int) []string {
	var pages []string
	for _, r := range results {
		if len(pages) >= limit {
			break
		}
		if r.IsHealthyPage() {
			pages = append(pages, r.RequestedURL)
		}
	}
	return pages
}

func (s *Session) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make(map[prober.Category]int)
	for _, r := range s.probeResults {
		categories[r.Category]++
	}
	return Summary{
		SessionID:      s.id,
		TotalURLs:      len(s.probeResults),
		Statistics:     s.ledger.Statistics(),
		WeightedScore:  ledger.ComputeWeightedScore(s.ledger.All()),
		Categories:     categories,
		AnalyzerErrors: s.analyzerErrors,
	}
}

func (s *Session) TestCases() []ledger.TestCase {
	return s.ledger.All()
}

func (s *Session) Snapshot() Snapshot {
	summary := s.Summary()

	s.mu.RLock()
	defer s.mu.RUnlock()

	analyzerResults := make(map[string][]ledger.TestCase, len(s.analyzerResults))
	for name, cases := range s.analyzerResults {
		analyzerResults[name] = append([]ledger.TestCase(nil), cases...)
	}
	return Snapshot{
		SessionID:       s.id,
		Links:           copyStrings(s.links),
		ProbeResults:    append([]prober.ProbeResult(nil), s.probeResults...),
		TestCases:       s.ledger.All(),
		AnalyzerResults: analyzerResults,
		Summary:         summary,
		StartedAt:       s.startedAt,
		FinishedAt:      s.finishedAt,
	}
}

// Clear empties every result and the ledger. The ID counter restarts.
// It returns ErrRunInProgress instead of clearing while Run is active.
func (s *Session) Clear() error {
	if !s.runMu.TryLock() {
		return ErrRunInProgress
	}
	defer s.runMu.Unlock()
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = nil
	s.probeResults = nil
	s.analyzerResults = make(map[string][]ledger.TestCase)
	s.analyzerErrors = 0
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
	s.ledger.Clear()
}

func nonBlank(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
