package weights

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rosterwire/leaguerank/internal/domain"
)

// DefaultCacheTTL is how long a loaded document is served before the store
// is consulted again.
const DefaultCacheTTL = 10 * time.Minute

// Resolver maps (phase, format) to a weight profile. Documents are cached
// in process with a TTL; any load failure falls back to the embedded
// defaults and the run continues.
type Resolver struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger

	mu       sync.Mutex
	cached   *Document
	loadedAt time.Time
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithTTL overrides the cache TTL.
func WithTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) { r.ttl = ttl }
}

// WithClock injects a time source for deterministic tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// NewResolver builds a Resolver over the given store. A nil store always
// serves the embedded defaults.
func NewResolver(store Store, logger zerolog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store: store,
		ttl:   DefaultCacheTTL,
		now:   time.Now,
		log:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the profile for a phase/format, with learned parameters
// applied when supplied.
func (r *Resolver) Resolve(phase domain.Phase, format domain.Format, params *domain.LearnedParams) Profile {
	doc := r.document()
	p, ok := doc.Profile(phase, format)
	if !ok {
		p, _ = DefaultDocument().Profile(phase, format)
		r.log.Warn().
			Str("phase", string(phase)).
			Str("format", string(format)).
			Msg("weight profile missing from config, using embedded default")
	}
	if params != nil {
		p = p.ApplyLearned(*params)
	}
	return p
}

func (r *Resolver) document() *Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.cached != nil && now.Sub(r.loadedAt) < r.ttl {
		return r.cached
	}

	if r.store == nil {
		r.cached = DefaultDocument()
		r.loadedAt = now
		return r.cached
	}

	doc, err := r.store.Load()
	if err != nil {
		r.log.Warn().Err(err).Msg("weights config load failed, using embedded defaults")
		doc = DefaultDocument()
	}
	r.cached = doc
	r.loadedAt = now
	return doc
}

// Invalidate drops the cached document so the next resolve reloads.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
	r.loadedAt = time.Time{}
}
