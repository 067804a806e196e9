package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/pkg/failure"
)

/*
Responsibilities

- Perform HTTP GET requests for pages whose HTML will be inspected
- Apply headers and timeouts
- Follow redirects
- Classify responses

Fetch Semantics

- Only 2xx HTML responses are returned
- Non-HTML content is discarded
- Bodies are capped at MaxBodyBytes
- No retries: a failed fetch is terminal for that page
- All responses are recorded with metadata

The fetcher never parses content; it only returns bytes and metadata.
*/

const (
	DefaultTimeout = 10 * time.Second
	MaxBodyBytes   = 5 << 20
)

type HtmlFetcher struct {
	metadataSink       metadata.MetadataSink
	httpClient         *http.Client
	timeout            time.Duration
	insecureSkipVerify bool
}

type Option func(*HtmlFetcher)

// WithTimeout sets the per-request timeout. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HtmlFetcher) {
		h.timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(h *HtmlFetcher) {
		h.insecureSkipVerify = skip
	}
}

// WithHTTPClient replaces the client. Timeout and TLS options are ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HtmlFetcher) {
		h.httpClient = c
	}
}

func NewHtmlFetcher(
	metadataSink metadata.MetadataSink,
	opts ...Option,
) *HtmlFetcher {
	h := &HtmlFetcher{
		metadataSink: metadataSink,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.httpClient == nil {
		h.httpClient = NewHTTPClient(h.timeout, h.insecureSkipVerify)
	}
	return h
}

// NewHTTPClient returns a redirect-following client with a fixed timeout.
func NewHTTPClient(timeout time.Duration, insecureSkipVerify bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func (h *HtmlFetcher) Fetch(
	ctx context.Context,
	crawlDepth int,
	fetchParam FetchParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HtmlFetcher.Fetch"
	startTime := time.Now()

	result, statusCode, contentType, err := h.performFetch(ctx, fetchParam.fetchUrl, fetchParam.userAgent)

	duration := time.Since(startTime)
	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		crawlDepth,
	)

	if err != nil {
		h.recordFetchError(callerMethod, fetchParam.fetchUrl, err)
		return FetchResult{}, err
	}

	result.meta.duration = duration
	return result, nil
}

func (h *HtmlFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

func (h *HtmlFetcher) performFetch(
	ctx context.Context,
	fetchUrl url.URL,
	userAgent string,
) (FetchResult, int, string, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, 0, "", &FetchError{
			Message: fmt.Sprintf("failed to create request: %v", err),
			Cause:   ErrCauseInvalidRequest,
		}
	}

	for key, value := range requestHeaders(userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, 0, "", &FetchError{
			Message: fmt.Sprintf("request failed: %v", err),
			Cause:   ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")

	switch {
	case resp.StatusCode >= 500:
		return FetchResult{}, resp.StatusCode, contentType, &FetchError{
			Message: fmt.Sprintf("server error: %d", resp.StatusCode),
			Cause:   ErrCauseRequest5xx,
		}
	case resp.StatusCode >= 400:
		return FetchResult{}, resp.StatusCode, contentType, &FetchError{
			Message: fmt.Sprintf("client error: %d", resp.StatusCode),
			Cause:   ErrCauseRequestClientError,
		}
	}

	if contentType != "" && !isHTMLContent(contentType) {
		return FetchResult{}, resp.StatusCode, contentType, &FetchError{
			Message: fmt.Sprintf("non-HTML content type: %q", contentType),
			Cause:   ErrCauseContentTypeInvalid,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return FetchResult{}, resp.StatusCode, contentType, &FetchError{
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Cause:   ErrCauseReadResponseBodyError,
		}
	}

	// a missing header is sniffed from the body
	if contentType == "" {
		contentType = http.DetectContentType(body)
		if !isHTMLContent(contentType) {
			return FetchResult{}, resp.StatusCode, contentType, &FetchError{
				Message: fmt.Sprintf("non-HTML content type: %q (sniffed)", contentType),
				Cause:   ErrCauseContentTypeInvalid,
			}
		}
	}

	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	finalURL := fetchUrl
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	return FetchResult{
		url:      fetchUrl,
		finalURL: finalURL,
		body:     body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			transferredSizeByte: uint64(len(body)),
			responseHeaders:     responseHeaders,
		},
	}, resp.StatusCode, contentType, nil
}

func isHTMLContent(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}
}
