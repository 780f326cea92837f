// Package crawler drives the list-page walk and the detail worker pool.
package crawler

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ps-vitor/imoveis-crawler/internal/domain"
)

// PageFetcher returns a page body; "" means the response had no body.
type PageFetcher interface {
	Fetch(ctx context.Context, absoluteURL string) (string, error)
}

type ListParser interface {
	ParseListPage(body string) (*domain.ListPageResult, error)
}

type DetailParser interface {
	ParseDetailPage(body string) (*domain.DetailFields, error)
}

// Sink receives finished records. Emit is only ever called from one
// goroutine per pool.
type Sink interface {
	Emit(record domain.ListingRecord) error
}

// Submitter accepts a batch of references without waiting for them to be
// processed.
type Submitter interface {
	Submit(refs []domain.ListingReference) error
}

// ResolveURL turns a site-relative or absolute href into an absolute URL.
func ResolveURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}
