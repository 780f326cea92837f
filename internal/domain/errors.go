package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyListPage is returned when a list page that should exist comes
	// back without a body. No cursor is available, so the crawl stops.
	ErrEmptyListPage = errors.New("list page returned an empty body")

	// ErrMissingHref marks a listing reference that has no detail link.
	ErrMissingHref = errors.New("listing reference has no href")

	// ErrPoolClosed is returned by Submit after the pool stopped accepting work.
	ErrPoolClosed = errors.New("detail pool is closed")
)

// FetchError is a transport or HTTP-layer failure for one URL.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
