package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/ps-vitor/imoveis-crawler/internal/domain"
	"github.com/ps-vitor/imoveis-crawler/pkg/logger"
)

type WalkerConfig struct {
	Fetcher   PageFetcher
	Parser    ListParser
	Pool      Submitter
	BaseURL   *url.URL
	StartPath string
	// MaxPages stops the walk after that many list pages; 0 means no limit.
	MaxPages int
	Logger   *logger.Logger
}

// Walker follows "next" links from the start path until a page has none.
// Each page's listings are handed to the pool without waiting for them.
type Walker struct {
	cfg   WalkerConfig
	log   *logger.Logger
	pages atomic.Int64
}

func NewWalker(cfg WalkerConfig) *Walker {
	log := cfg.Logger
	if log == nil {
		log = logger.New("walker")
	}
	return &Walker{cfg: cfg, log: log}
}

// Pages is the number of list pages processed so far.
func (w *Walker) Pages() int64 {
	return w.pages.Load()
}

// Run walks the pagination. A fetch error, a parse error or an empty list
// page ends the walk with an error; pages already submitted keep running in
// the pool.
func (w *Walker) Run(ctx context.Context) (int, error) {
	href := w.cfg.StartPath
	pages := 0

	for {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		if w.cfg.MaxPages > 0 && pages >= w.cfg.MaxPages {
			w.log.WithField("max_pages", w.cfg.MaxPages).Info("page limit reached, stopping")
			return pages, nil
		}

		pageURL, err := ResolveURL(w.cfg.BaseURL, href)
		if err != nil {
			return pages, err
		}

		page, err := w.fetchPage(ctx, pageURL)
		if err != nil {
			return pages, err
		}
		pages++
		w.pages.Add(1)

		if len(page.Listings) > 0 {
			if err := w.cfg.Pool.Submit(page.Listings); err != nil {
				return pages, fmt.Errorf("submit listings from %s: %w", pageURL, err)
			}
		}

		w.log.With(logger.Fields{
			"page":     page.Pagination.CurrentPageNumber,
			"url":      pageURL,
			"listings": len(page.Listings),
			"next":     page.Pagination.NextPageHref,
		}).Info("list page processed")

		if !page.Pagination.HasNext() {
			return pages, nil
		}
		href = page.Pagination.NextPageHref
	}
}

func (w *Walker) fetchPage(ctx context.Context, pageURL string) (*domain.ListPageResult, error) {
	body, err := w.cfg.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("list page %s: %w", pageURL, err)
	}
	page, err := w.cfg.Parser.ParseListPage(body)
	if err != nil {
		return nil, fmt.Errorf("list page %s: %w", pageURL, err)
	}
	if page == nil {
		return nil, fmt.Errorf("list page %s: %w", pageURL, domain.ErrEmptyListPage)
	}
	return page, nil
}
