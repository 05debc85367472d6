// Package geocode resolves place names to coordinates using a layered
// strategy: session cache, then gazetteer, then a rate-limited external
// lookup validated against a region bias.
package geocode

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/levonter/corridor/internal/domain"
	"github.com/levonter/corridor/internal/gazetteer"
)

// biasMargin is how far outside the bias box, in degrees, an external
// candidate may fall and still be accepted. Nearby places just over a
// region border are legitimate; anything further is a mis-geocode.
const biasMargin = 5.0

// ProgressFunc receives batch progress after each name resolves.
// pct is in [0,100].
type ProgressFunc func(done, total int, pct float64)

// Resolver resolves place names to coordinates. Safe for concurrent use;
// external calls are serialized to respect the provider's request budget.
type Resolver struct {
	gaz      *gazetteer.Table
	geocoder domain.Geocoder
	cache    *lruCache
	delay    time.Duration
	logger   *slog.Logger
	clock    clockwork.Clock

	biasMu sync.RWMutex
	bias   *domain.BoundingBox

	extMu    sync.Mutex
	lastCall time.Time
}

// New creates a resolver. cacheSize bounds the session cache; delay is the
// minimum gap between consecutive external calls.
func New(gaz *gazetteer.Table, geocoder domain.Geocoder, cacheSize int, delay time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		gaz:      gaz,
		geocoder: geocoder,
		cache:    newLRUCache(cacheSize),
		delay:    delay,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
	}
}

// SetClock replaces the clock used for external call spacing, so tests can
// install a fake and never sleep for real. Passing nil restores the real
// clock.
func (r *Resolver) SetClock(clk clockwork.Clock) {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	r.clock = clk
}

// SetRegionBias sets the bounding box used to constrain and validate
// external lookups. Pass nil to clear; with no bias set, unknown names
// never reach the external service.
func (r *Resolver) SetRegionBias(box *domain.BoundingBox) {
	r.biasMu.Lock()
	defer r.biasMu.Unlock()
	if box == nil {
		r.bias = nil
		return
	}
	b := *box
	r.bias = &b
}

// Resolve maps a place name to a coordinate, or nil when the name cannot
// be resolved with confidence. External failures degrade to nil; they are
// logged, never propagated.
func (r *Resolver) Resolve(ctx context.Context, name string) *domain.Coordinate {
	key := gazetteer.Normalize(name)
	if key == "" {
		return nil
	}

	if coord, ok := r.cache.get(key); ok {
		return &coord
	}

	// Gazetteer entries are hand-curated, so this path is authoritative
	// and skips bias validation.
	if coord, ok := r.gaz.Lookup(key); ok {
		r.cache.put(key, coord)
		return &coord
	}

	r.biasMu.RLock()
	bias := r.bias
	r.biasMu.RUnlock()
	if bias == nil {
		// An un-biased lookup of a low-confidence string geocodes ordinary
		// words to arbitrary places. Refuse rather than guess.
		return nil
	}

	candidates, err := r.searchThrottled(ctx, name, *bias)
	if err != nil {
		r.logger.Warn("external geocode failed, treating as no match",
			"place", name, "error", err)
		return nil
	}

	accepted := bias.Expand(biasMargin)
	for _, c := range candidates {
		if accepted.Contains(c) {
			r.cache.put(key, c)
			return &c
		}
	}
	if len(candidates) > 0 {
		r.logger.Debug("all geocoder candidates outside bias region",
			"place", name, "candidates", len(candidates))
	}
	return nil
}

// ResolveBatch resolves names in order, reporting progress after each one.
// Resolution stops early when ctx is cancelled; the in-flight name
// completes but no further external calls are issued. Unresolved and
// unprocessed names map to nil.
func (r *Resolver) ResolveBatch(ctx context.Context, names []string, progress ProgressFunc) map[string]*domain.Coordinate {
	out := make(map[string]*domain.Coordinate, len(names))
	for _, name := range names {
		out[name] = nil
	}

	total := len(names)
	for i, name := range names {
		if ctx.Err() != nil {
			r.logger.Info("geocode batch cancelled", "done", i, "total", total)
			break
		}
		out[name] = r.Resolve(ctx, name)
		if progress != nil {
			progress(i+1, total, float64(i+1)/float64(total)*100)
		}
	}
	return out
}

// searchThrottled serializes external calls and enforces the inter-call
// delay. Cache and gazetteer hits never reach this path.
func (r *Resolver) searchThrottled(ctx context.Context, name string, bias domain.BoundingBox) ([]domain.Coordinate, error) {
	r.extMu.Lock()
	defer r.extMu.Unlock()

	if !r.lastCall.IsZero() {
		if wait := r.delay - r.clock.Since(r.lastCall); wait > 0 {
			r.clock.Sleep(wait)
		}
	}
	r.lastCall = r.clock.Now()
	return r.geocoder.Search(ctx, name, bias)
}
