package services

import (
	"sync"

	"github.com/ps-vitor/imoveis-crawler/internal/domain"
)

// StatusRegistry keeps a live stats source per site for the status endpoint.
type StatusRegistry struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]func() domain.Stats
}

func NewStatusRegistry() *StatusRegistry {
	return &StatusRegistry{sources: make(map[string]func() domain.Stats)}
}

// Track registers or replaces the stats source for site.
func (r *StatusRegistry) Track(site string, source func() domain.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[site]; !ok {
		r.order = append(r.order, site)
	}
	r.sources[site] = source
}

// Snapshot returns current stats for every tracked site in registration order.
func (r *StatusRegistry) Snapshot() []domain.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Stats, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sources[name]())
	}
	return out
}

func (r *StatusRegistry) Site(name string) (domain.Stats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[name]
	if !ok {
		return domain.Stats{}, false
	}
	return src(), true
}
