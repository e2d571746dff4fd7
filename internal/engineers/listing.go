package engineers

import (
	"context"
	"sync"
	"time"

	"github.com/kingrea/engadmin/internal/api"
)

// ListGateway fetches the raw engineer listing.
type ListGateway interface {
	ListEngineers(ctx context.Context) ([]api.RawEngineer, error)
}

// Listing caches the last fetched listing and the active filter.
type Listing struct {
	gateway ListGateway
	now     func() time.Time

	mu        sync.RWMutex
	items     []Summary
	filter    Filter
	err       error
	loading   bool
	fetchedAt time.Time
}

// ListingSnapshot is a copy of the listing state for rendering.
type ListingSnapshot struct {
	Items     []Summary
	Filtered  []Summary
	Filter    Filter
	Stats     Stats
	Err       error
	Loading   bool
	FetchedAt time.Time
}

// NewListing returns an empty listing filtered by defaultStatus.
func NewListing(gateway ListGateway, defaultStatus string) *Listing {
	if defaultStatus == "" {
		defaultStatus = StatusAll
	}
	return &Listing{
		gateway: gateway,
		now:     time.Now,
		filter:  Filter{Status: defaultStatus},
	}
}

// Refresh fetches the listing once. A failed fetch keeps the previous rows.
func (l *Listing) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	raw, err := l.gateway.ListEngineers(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	l.err = err
	if err != nil {
		return err
	}
	l.items = NormalizeAll(raw)
	l.fetchedAt = l.now()
	return nil
}

// SetFilter replaces the active filter.
func (l *Listing) SetFilter(f Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if f.Status == "" {
		f.Status = StatusAll
	}
	l.filter = f
}

// Filter returns the active filter.
func (l *Listing) Filter() Filter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter
}

// Filtered applies the active filter to the cached rows.
func (l *Listing) Filtered() []Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Apply(l.items, l.filter)
}

// Snapshot copies the current state.
func (l *Listing) Snapshot() ListingSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return ListingSnapshot{
		Items:     append([]Summary(nil), l.items...),
		Filtered:  Apply(l.items, l.filter),
		Filter:    l.filter,
		Stats:     Count(l.items),
		Err:       l.err,
		Loading:   l.loading,
		FetchedAt: l.fetchedAt,
	}
}

// NextStatus cycles through the status filter values.
func NextStatus(current string, values []string) string {
	if len(values) == 0 {
		return StatusAll
	}
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
