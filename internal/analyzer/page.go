package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/webqa/internal/fetcher"
)

// Page is a fetched and parsed HTML document.
type Page struct {
	URL      string
	Doc      *goquery.Document
	Size     uint64
	Duration time.Duration
	Headers  map[string]string
}

// PageLoader fetches pages for analyzers. Analyzers share one loader.
type PageLoader struct {
	fetcher   fetcher.Fetcher
	userAgent string
}

func NewPageLoader(f fetcher.Fetcher, userAgent string) *PageLoader {
	return &PageLoader{
		fetcher:   f,
		userAgent: userAgent,
	}
}

func (l *PageLoader) Load(ctx context.Context, pageURL string) (Page, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("invalid page url: %w", err)
	}

	result, fetchErr := l.fetcher.Fetch(ctx, 0, fetcher.NewFetchParam(*parsed, l.userAgent))
	if fetchErr != nil {
		return Page{}, fetchErr
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body()))
	if err != nil {
		return Page{}, fmt.Errorf("parse page: %w", err)
	}

	return Page{
		URL:      pageURL,
		Doc:      doc,
		Size:     result.SizeByte(),
		Duration: result.Duration(),
		Headers:  result.Headers(),
	}, nil
}
