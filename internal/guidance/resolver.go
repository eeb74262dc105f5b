package guidance

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrStoreUnavailable indicates the instruction store could not be queried
// and no cached value (fresh or stale) was available to serve instead.
var ErrStoreUnavailable = errors.New("instruction store unavailable")

// DefaultTTL is how long a resolved instruction set stays fresh unless the
// caller supplies a shorter TTL. Hand-tuned; configurable via Config.
const DefaultTTL = 5 * time.Minute

// DefaultCacheSize bounds the number of cached scope combinations.
const DefaultCacheSize = 256

// Source is the read side of the instruction store.
type Source interface {
	QueryInstructions(ctx context.Context, f Filter) ([]Instruction, error)
}

// Filter selects instructions by scope for a Source query. Empty Project
// or Category means that scope is not requested.
type Filter struct {
	Global   bool
	Project  string
	Category string
}

// Query describes which scopes a resolve call should combine.
type Query struct {
	IncludeGlobal bool
	Project       string
	Category      string

	// TTL overrides the resolver default for this entry when set to a
	// shorter duration. Zero means use the default.
	TTL time.Duration
}

// Config tunes a Resolver.
type Config struct {
	TTL       time.Duration
	CacheSize int
}

// Resolver resolves instruction sets per scope combination and caches them.
//
// The cache is shared by concurrent report requests, so it is always
// constructed explicitly and passed by handle — never reached through
// package globals. lru.Cache is internally locked;
// the write-then-read guarantee for Invalidate* comes from that lock.
type Resolver struct {
	source Source
	cache  *lru.Cache[string, *cacheEntry]
	ttl    time.Duration

	timeNow func() time.Time
}

type cacheEntry struct {
	instructions []Instruction
	createdAt    time.Time
	ttl          time.Duration
}

func (e *cacheEntry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// NewResolver creates a Resolver over the given source.
func NewResolver(source Source, cfg Config) (*Resolver, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, *cacheEntry](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("guidance: create cache: %w", err)
	}

	return &Resolver{
		source:  source,
		cache:   cache,
		ttl:     cfg.TTL,
		timeNow: time.Now,
	}, nil
}

// Resolve returns the instructions applicable to the queried scopes, most
// important first (priority descending, then newest first).
//
// A fresh cache entry is returned as a defensive copy without touching the
// store. On a miss the store is queried and the result cached. If the store
// is unreachable and any cached value exists — even an expired one — the
// stale value is served; otherwise the error wraps ErrStoreUnavailable.
func (r *Resolver) Resolve(ctx context.Context, q Query) ([]Instruction, error) {
	key := cacheKey(q)

	entry, cached := r.cache.Get(key)
	if cached && !entry.expired(r.timeNow()) {
		return copyInstructions(entry.instructions), nil
	}

	instructions, err := r.source.QueryInstructions(ctx, Filter{
		Global:   q.IncludeGlobal,
		Project:  normalizeName(q.Project),
		Category: normalizeName(q.Category),
	})
	if err != nil {
		if cached {
			// Stale but available beats unavailable.
			return copyInstructions(entry.instructions), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sortInstructions(instructions)

	ttl := r.ttl
	if q.TTL > 0 && q.TTL < ttl {
		ttl = q.TTL
	}
	r.cache.Add(key, &cacheEntry{
		instructions: instructions,
		createdAt:    r.timeNow(),
		ttl:          ttl,
	})

	return copyInstructions(instructions), nil
}

// Invalidate purges every cache key matching the pattern (path.Match
// syntax, so "*project:alpha*" style patterns work via component match
// below; a literal key works too).
func (r *Resolver) Invalidate(pattern string) {
	for _, key := range r.cache.Keys() {
		if ok, _ := path.Match(pattern, key); ok {
			r.cache.Remove(key)
		}
	}
}

// InvalidateProject purges every cached scope combination that includes
// the named project. Composite keys like "global|category:x|project:alpha"
// are matched by component, not by exact key.
func (r *Resolver) InvalidateProject(name string) {
	r.invalidateComponent(ProjectScope(name).String())
}

// InvalidateCategory purges every cached scope combination that includes
// the named category.
func (r *Resolver) InvalidateCategory(name string) {
	r.invalidateComponent(CategoryScope(name).String())
}

// InvalidateGlobal purges every cached scope combination that includes the
// global scope.
func (r *Resolver) InvalidateGlobal() {
	r.invalidateComponent(GlobalScope().String())
}

// InvalidateScope purges by scope variant, dispatching to the matching
// Invalidate* method.
func (r *Resolver) InvalidateScope(s Scope) {
	switch s.Kind {
	case ScopeGlobal:
		r.InvalidateGlobal()
	case ScopeProject:
		r.InvalidateProject(s.Name)
	case ScopeCategory:
		r.InvalidateCategory(s.Name)
	}
}

// Clear drops every cached entry.
func (r *Resolver) Clear() {
	r.cache.Purge()
}

func (r *Resolver) invalidateComponent(component string) {
	for _, key := range r.cache.Keys() {
		for _, part := range strings.Split(key, "|") {
			if part == component {
				r.cache.Remove(key)
				break
			}
		}
	}
}

// cacheKey builds a deterministic key from the normalized scope components,
// e.g. "global|category:research|project:alpha". Components are sorted so
// equivalent queries share an entry.
func cacheKey(q Query) string {
	var parts []string
	if q.IncludeGlobal {
		parts = append(parts, GlobalScope().String())
	}
	if name := normalizeName(q.Category); name != "" {
		parts = append(parts, CategoryScope(name).String())
	}
	if name := normalizeName(q.Project); name != "" {
		parts = append(parts, ProjectScope(name).String())
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// sortInstructions orders by priority descending, then newest first.
func sortInstructions(instructions []Instruction) {
	sort.Slice(instructions, func(i, j int) bool {
		if instructions[i].Priority != instructions[j].Priority {
			return instructions[i].Priority > instructions[j].Priority
		}
		return instructions[i].CreatedAt.After(instructions[j].CreatedAt)
	})
}

// copyInstructions returns a defensive copy so callers cannot mutate the
// cached slice.
func copyInstructions(instructions []Instruction) []Instruction {
	if instructions == nil {
		return nil
	}
	out := make([]Instruction, len(instructions))
	copy(out, instructions)
	return out
}
