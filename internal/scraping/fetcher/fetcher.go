// internal/scraping/fetcher/fetcher.go
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/ps-vitor/imoveis-crawler/internal/config"
	"github.com/ps-vitor/imoveis-crawler/internal/domain"
	"github.com/ps-vitor/imoveis-crawler/pkg/logger"
)

// Config is the fixed transport setup for one site.
type Config struct {
	BaseURL string
	Headers config.HeadersConfig
	Timeout time.Duration
	Delay   time.Duration

	// Parallelism is the number of requests allowed in flight while Delay
	// is set. It should cover the detail workers plus the list page walker.
	Parallelism int
}

// Fetcher performs GET requests with a browser-like header set. It keeps one
// parent collector and clones it per request so callbacks never leak
// between concurrent fetches.
type Fetcher struct {
	collector *colly.Collector
	headers   config.HeadersConfig
	log       *logger.Logger
}

func New(cfg Config) (*Fetcher, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Hostname() == "" {
		return nil, fmt.Errorf("fetcher: invalid base url %q", cfg.BaseURL)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.UserAgent(cfg.Headers.UserAgent),
		colly.AllowURLRevisit(),
	)
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	if cfg.Delay > 0 {
		parallelism := cfg.Parallelism
		if parallelism < 1 {
			parallelism = 1
		}
		err := c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: parallelism,
			Delay:       cfg.Delay,
			RandomDelay: cfg.Delay,
		})
		if err != nil {
			return nil, fmt.Errorf("fetcher: failed to set limit rule: %w", err)
		}
	}

	f := &Fetcher{
		collector: c,
		headers:   cfg.Headers,
		log:       logger.New("fetcher").With(logger.Fields{"host": base.Hostname()}),
	}
	return f, nil
}

func (f *Fetcher) setHeaders(r *colly.Request) {
	if f.headers.UserAgent != "" {
		r.Headers.Set("User-Agent", f.headers.UserAgent)
	}
	if f.headers.Accept != "" {
		r.Headers.Set("Accept", f.headers.Accept)
	}
	if f.headers.AcceptLanguage != "" {
		r.Headers.Set("Accept-Language", f.headers.AcceptLanguage)
	}
	if f.headers.UpgradeInsecureRequests != "" {
		r.Headers.Set("Upgrade-Insecure-Requests", f.headers.UpgradeInsecureRequests)
	}
}

// Fetch returns the response body of absoluteURL. An empty string means a
// 2xx response had no body, which is not an error. Transport failures,
// timeouts and non-2xx responses come back as *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, absoluteURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.FetchError{URL: absoluteURL, Err: err}
	}

	// Clones share the backend (timeout, limits) but not callbacks.
	c := f.collector.Clone()
	c.Context = ctx
	// Every status reaches OnResponse; 2xx is told apart below.
	c.ParseHTTPErrorResponse = true
	c.OnRequest(f.setHeaders)

	var body []byte
	var status int
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	f.log.WithField("url", absoluteURL).Debug("fetching")
	if err := c.Visit(absoluteURL); err != nil {
		return "", &domain.FetchError{URL: absoluteURL, StatusCode: status, Err: err}
	}
	c.Wait()

	if status < 200 || status > 299 {
		return "", &domain.FetchError{
			URL:        absoluteURL,
			StatusCode: status,
			Err:        fmt.Errorf("unexpected response: %s", http.StatusText(status)),
		}
	}
	if len(body) == 0 {
		return "", nil
	}
	return string(body), nil
}
