package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// LatestSeriesID resolves to the most recently stored series, for clients
// that do not track series ids.
const LatestSeriesID = "latest"

// SeriesArena holds enriched series keyed by id. Series are immutable once
// stored; every session holds its own read-only reference, so concurrent
// fetches never race on a shared slot. Oldest series are evicted first once
// the capacity is reached.
type SeriesArena struct {
	mu       sync.RWMutex
	entries  map[string]*types.PriceSeries
	order    []string
	latest   string
	capacity int
}

// NewSeriesArena creates an arena holding at most capacity series.
func NewSeriesArena(capacity int) *SeriesArena {
	if capacity < 1 {
		capacity = 1
	}

	return &SeriesArena{
		entries:  make(map[string]*types.PriceSeries),
		capacity: capacity,
	}
}

// Put stores a series and returns its new id. The stored series becomes the
// "latest" one.
func (a *SeriesArena) Put(series *types.PriceSeries) string {
	id := uuid.New().String()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries[id] = series
	a.order = append(a.order, id)
	a.latest = id

	for len(a.order) > a.capacity {
		oldest := a.order[0]
		a.order = a.order[1:]
		delete(a.entries, oldest)
	}

	return id
}

// Get resolves a series id. An empty id or LatestSeriesID resolves to the
// most recently stored series.
func (a *SeriesArena) Get(id string) (*types.PriceSeries, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if id == "" || id == LatestSeriesID {
		id = a.latest
	}

	series, ok := a.entries[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeSeriesNotFound, "series not found: %q", id)
	}

	return series, nil
}

// Len returns the number of stored series.
func (a *SeriesArena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.entries)
}
