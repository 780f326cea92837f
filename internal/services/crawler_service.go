// internal/services/crawler_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ps-vitor/imoveis-crawler/internal/config"
	"github.com/ps-vitor/imoveis-crawler/internal/crawler"
	"github.com/ps-vitor/imoveis-crawler/internal/domain"
	"github.com/ps-vitor/imoveis-crawler/internal/scraping/collectors/idealista"
	"github.com/ps-vitor/imoveis-crawler/internal/scraping/fetcher"
	"github.com/ps-vitor/imoveis-crawler/pkg/logger"
)

// FetcherFactory builds the page fetcher for one site.
type FetcherFactory func(site config.SiteConfig, headers config.HeadersConfig) (crawler.PageFetcher, error)

func defaultFetcherFactory(site config.SiteConfig, headers config.HeadersConfig) (crawler.PageFetcher, error) {
	return fetcher.New(fetcher.Config{
		BaseURL:     site.BaseURL,
		Headers:     headers,
		Timeout:     site.Timeout,
		Delay:       site.Delay,
		Parallelism: site.Concurrency + 1,
	})
}

// CrawlerService runs one Walker and one detail Pool per site profile.
type CrawlerService struct {
	headers    config.HeadersConfig
	sink       crawler.Sink
	registry   *StatusRegistry
	newFetcher FetcherFactory
	log        *logger.Logger
}

// Functional Options Pattern
type Option func(*CrawlerService)

func WithRegistry(r *StatusRegistry) Option {
	return func(s *CrawlerService) { s.registry = r }
}

func WithFetcherFactory(f FetcherFactory) Option {
	return func(s *CrawlerService) { s.newFetcher = f }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *CrawlerService) { s.log = l }
}

func NewCrawlerService(headers config.HeadersConfig, sink crawler.Sink, opts ...Option) *CrawlerService {
	s := &CrawlerService{
		headers:    headers,
		sink:       sink,
		newFetcher: defaultFetcherFactory,
		log:        logger.New("crawler-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl walks one site to the end and waits for every listing it found to be
// emitted, skipped or reported as failed. A list page failure is returned
// only after the pool has drained.
func (s *CrawlerService) Crawl(ctx context.Context, site config.SiteConfig) (domain.Stats, error) {
	base, err := site.ParsedBaseURL()
	if err != nil {
		return domain.Stats{Site: site.Name}, err
	}
	f, err := s.newFetcher(site, s.headers)
	if err != nil {
		return domain.Stats{Site: site.Name}, fmt.Errorf("site %s: %w", site.Name, err)
	}

	runID := uuid.New().String()
	log := s.log.With(logger.Fields{"site": site.Name, "run": runID})
	parser := idealista.NewParser(site.Markers)

	pool := crawler.NewPool(crawler.PoolConfig{
		Fetcher: f,
		Parser:  parser,
		Sink:    s.sink,
		BaseURL: base,
		Workers: site.Concurrency,
		Logger:  log.With(logger.Fields{"component": "detail-pool"}),
	})
	walker := crawler.NewWalker(crawler.WalkerConfig{
		Fetcher:   f,
		Parser:    parser,
		Pool:      pool,
		BaseURL:   base,
		StartPath: site.StartPath,
		MaxPages:  site.MaxPages,
		Logger:    log.With(logger.Fields{"component": "walker"}),
	})

	snapshot := func() domain.Stats {
		st := pool.Stats()
		st.Site = site.Name
		st.RunID = runID
		st.Pages = walker.Pages()
		return st
	}
	if s.registry != nil {
		s.registry.Track(site.Name, snapshot)
	}

	log.With(logger.Fields{
		"start":       site.StartPath,
		"concurrency": site.Concurrency,
		"timeout":     site.Timeout.String(),
	}).Info("crawl started")

	pool.Start(ctx)
	_, walkErr := walker.Run(ctx)
	pool.Close()
	pool.Wait()

	stats := snapshot()
	stats.Done = true
	if s.registry != nil {
		s.registry.Track(site.Name, func() domain.Stats { return stats })
	}

	summary := log.With(logger.Fields{
		"pages":     stats.Pages,
		"submitted": stats.Submitted,
		"emitted":   stats.Emitted,
		"skipped":   stats.Skipped,
		"failed":    stats.Failed,
		"pending":   stats.Pending(),
	})
	if walkErr != nil {
		summary.WithError(walkErr).Error("crawl aborted")
		return stats, fmt.Errorf("site %s: %w", site.Name, walkErr)
	}
	summary.Info("crawl finished")
	return stats, nil
}
