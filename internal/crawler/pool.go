package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/ps-vitor/imoveis-crawler/internal/domain"
	"github.com/ps-vitor/imoveis-crawler/pkg/logger"
)

// PoolConfig wires a Pool.
type PoolConfig struct {
	Fetcher PageFetcher
	Parser  DetailParser
	Sink    Sink
	BaseURL *url.URL
	Workers int
	Logger  *logger.Logger

	// OnOutcome, if set, is called once per reference after the outcome
	// has been counted.
	OnOutcome func(domain.Outcome)
}

// Pool is a fixed group of workers draining an unbounded queue of listing
// references. Submit never waits on the workers, so page traversal is
// decoupled from detail fetching. Every submitted reference produces exactly
// one Outcome: emitted, skipped or failed.
type Pool struct {
	cfg PoolConfig
	log *logger.Logger

	incoming chan []domain.ListingReference
	jobs     chan domain.ListingReference
	outcomes chan domain.Outcome
	done     chan struct{}
	workers  sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool

	submitted atomic.Int64
	emitted   atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := cfg.Logger
	if log == nil {
		log = logger.New("detail-pool")
	}
	return &Pool{
		cfg:      cfg,
		log:      log,
		incoming: make(chan []domain.ListingReference),
		jobs:     make(chan domain.ListingReference),
		outcomes: make(chan domain.Outcome, cfg.Workers),
		done:     make(chan struct{}),
	}
}

// Start launches the dispatcher, the workers and the outcome collector.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	go p.dispatch()
	for i := 0; i < p.cfg.Workers; i++ {
		p.workers.Add(1)
		go p.worker(ctx)
	}
	go func() {
		p.workers.Wait()
		close(p.outcomes)
	}()
	go p.collect()
}

// Submit enqueues a batch. It returns ErrPoolClosed after Close.
func (p *Pool) Submit(refs []domain.ListingReference) error {
	if len(refs) == 0 {
		return nil
	}
	batch := make([]domain.ListingReference, len(refs))
	copy(batch, refs)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return domain.ErrPoolClosed
	}
	if !p.started {
		return fmt.Errorf("submit before start: %w", domain.ErrPoolClosed)
	}
	p.submitted.Add(int64(len(batch)))
	// The dispatcher is always ready to receive while incoming is open.
	p.incoming <- batch
	return nil
}

// Close stops accepting batches. Already queued references still run.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.started {
		close(p.incoming)
	} else {
		close(p.done)
	}
}

// Wait blocks until Close was called and every queued reference has an
// outcome, then returns the final counters.
func (p *Pool) Wait() domain.Stats {
	<-p.done
	return p.Stats()
}

// Stats is a live snapshot of the counters.
func (p *Pool) Stats() domain.Stats {
	return domain.Stats{
		Submitted: p.submitted.Load(),
		Emitted:   p.emitted.Load(),
		Skipped:   p.skipped.Load(),
		Failed:    p.failed.Load(),
	}
}

// dispatch moves batches from Submit into a FIFO and hands single references
// to whichever worker is free.
func (p *Pool) dispatch() {
	defer close(p.jobs)

	var pending []domain.ListingReference
	in := p.incoming
	for in != nil || len(pending) > 0 {
		var out chan<- domain.ListingReference
		var next domain.ListingReference
		if len(pending) > 0 {
			out = p.jobs
			next = pending[0]
		}

		select {
		case batch, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			pending = append(pending, batch...)
		case out <- next:
			pending[0] = domain.ListingReference{}
			pending = pending[1:]
		}
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.workers.Done()
	for ref := range p.jobs {
		p.outcomes <- p.process(ctx, ref)
	}
}

func (p *Pool) process(ctx context.Context, ref domain.ListingReference) (out domain.Outcome) {
	out = domain.Outcome{Reference: ref}
	defer func() {
		if r := recover(); r != nil {
			out.Kind = domain.OutcomeFailed
			out.Record = nil
			out.Err = fmt.Errorf("panic while processing listing: %v", r)
		}
	}()

	fail := func(err error) domain.Outcome {
		out.Kind = domain.OutcomeFailed
		out.Err = err
		return out
	}

	if ref.ListingHref == "" {
		return fail(domain.ErrMissingHref)
	}
	listingURL, err := ResolveURL(p.cfg.BaseURL, ref.ListingHref)
	if err != nil {
		return fail(err)
	}
	out.URL = listingURL

	body, err := p.cfg.Fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return fail(err)
	}
	fields, err := p.cfg.Parser.ParseDetailPage(body)
	if err != nil {
		return fail(fmt.Errorf("parse detail page %s: %w", listingURL, err))
	}
	if fields == nil {
		out.Kind = domain.OutcomeSkipped
		return out
	}

	record := domain.NewListingRecord(ref, *fields, listingURL)
	out.Kind = domain.OutcomeEmitted
	out.Record = &record
	return out
}

// collect is the single consumer of outcomes: it emits records, keeps the
// counters and logs failures.
func (p *Pool) collect() {
	defer close(p.done)

	for out := range p.outcomes {
		if out.Kind == domain.OutcomeEmitted {
			if err := p.cfg.Sink.Emit(*out.Record); err != nil {
				out.Kind = domain.OutcomeFailed
				out.Err = fmt.Errorf("emit record: %w", err)
			}
		}

		entry := p.log.With(logger.Fields{"listing_id": out.Reference.ListingID, "url": out.URL})
		switch out.Kind {
		case domain.OutcomeEmitted:
			p.emitted.Add(1)
			entry.Debug("listing emitted")
		case domain.OutcomeSkipped:
			p.skipped.Add(1)
			entry.Debug("listing skipped: empty detail page")
		default:
			p.failed.Add(1)
			entry.WithError(out.Err).Error("listing failed")
		}

		if p.cfg.OnOutcome != nil {
			p.cfg.OnOutcome(out)
		}
	}
}
