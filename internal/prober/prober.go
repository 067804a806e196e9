package prober

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/webqa/internal/metadata"
	"golang.org/x/sync/errgroup"
)

/*
Responsibilities
- One GET per URL, following redirects, with an independent fixed timeout
- Bucket the final status into a Category and measure latency
- Convert every transport failure into a TransportError result
- Fan a URL list out over a bounded worker pool and return exactly one
  result per input position

No retries. A failed or timed out probe is terminal for that URL.
*/

const (
	DefaultTimeout   = 8 * time.Second
	DefaultPoolSize  = 20
	maxDrainBytes    = 1 << 20
	defaultUserAgent = "webqa"
)

type Prober struct {
	metadataSink       metadata.MetadataSink
	client             *http.Client
	timeout            time.Duration
	insecureSkipVerify bool
	userAgent          string
}

type Option func(*Prober)

// WithTimeout sets the per-probe timeout. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		p.timeout = d
	}
}

func WithInsecureSkipVerify(skip bool) Option {
	return func(p *Prober) {
		p.insecureSkipVerify = skip
	}
}

func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		p.userAgent = ua
	}
}

// WithHTTPClient replaces the client. Timeout and TLS options are ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Prober) {
		p.client = c
	}
}

func NewProber(metadataSink metadata.MetadataSink, opts ...Option) *Prober {
	p := &Prober{
		metadataSink: metadataSink,
		timeout:      DefaultTimeout,
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if p.insecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		p.client = &http.Client{Timeout: p.timeout, Transport: transport}
	}
	return p
}

// ProbeOne checks a single URL. It never returns an error: transport
// failures become a TransportError result carrying the error text.
func (p *Prober) ProbeOne(ctx context.Context, raw string) ProbeResult {
	target := NormalizeURL(raw)
	result := ProbeResult{
		RequestedURL: target,
		FinalURL:     target,
	}

	start := time.Now()
	statusCode, statusText, finalURL, err := p.get(ctx, target)
	result.LatencyMs = time.Since(start).Milliseconds()
	result.Timestamp = time.Now()

	if err != nil {
		result.Category = CategoryTransportError
		result.ErrorDetail = firstLine(err.Error())
		p.metadataSink.RecordError(
			result.Timestamp,
			"prober",
			"Prober.ProbeOne",
			metadata.CauseNetworkFailure,
			result.ErrorDetail,
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, target)},
		)
	} else {
		result.StatusCode = statusCode
		result.StatusText = statusText
		result.FinalURL = finalURL
		result.Category = Categorize(statusCode)
	}

	p.metadataSink.RecordProbe(target, result.StatusCode, string(result.Category), time.Duration(result.LatencyMs)*time.Millisecond)
	return result
}

func (p *Prober) get(ctx context.Context, target string) (int, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, "", "", err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", "", err
	}
	defer resp.Body.Close()
	// read the body like a browser would, bounded, so latency covers the transfer
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return resp.StatusCode, http.StatusText(resp.StatusCode), finalURL, nil
}

// ProbeAll probes every URL over a pool of at most poolSize workers and
// returns one result per input, in input order. Identical input strings are
// probed once and share the result. poolSize < 1 is treated as 1.
// progress may be nil.
func (p *Prober) ProbeAll(ctx context.Context, urls []string, poolSize int, progress ProgressFunc) []ProbeResult {
	if poolSize < 1 {
		poolSize = 1
	}

	// positions of each distinct input string, in first-seen order
	positions := make(map[string][]int, len(urls))
	var distinct []string
	for i, u := range urls {
		if _, seen := positions[u]; !seen {
			distinct = append(distinct, u)
		}
		positions[u] = append(positions[u], i)
	}

	type probed struct {
		raw    string
		result ProbeResult
	}
	resultCh := make(chan probed, len(distinct))

	var g errgroup.Group
	g.SetLimit(poolSize)

	go func() {
		for _, raw := range distinct {
			g.Go(func() error {
				resultCh <- probed{raw: raw, result: p.ProbeOne(ctx, raw)}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]ProbeResult, len(urls))
	completed := 0
	for r := range resultCh {
		for _, pos := range positions[r.raw] {
			results[pos] = r.result
			completed++
			if progress != nil {
				progress(completed, len(urls), r.result)
			}
		}
	}
	return results
}

// NormalizeURL trims whitespace and defaults a missing scheme to http.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		return raw
	}
	return "http://" + raw
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
