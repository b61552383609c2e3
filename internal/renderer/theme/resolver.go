package theme

import (
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// Resolver memoizes theme lookups.
// Parent-scope fallback walks up to one map lookup per scope segment; parsers emit
// a small vocabulary of scopes, so each distinct scope is resolved once per theme.
// A Resolver is safe for concurrent use.
type Resolver struct {
	mu    sync.RWMutex
	theme *Theme
	memo  *gocache.Cache
}

// resolved is the memoized outcome of one lookup, including misses.
type resolved struct {
	class string
	ok    bool
}

// NewResolver creates a resolver for t. A nil theme uses DefaultTheme.
func NewResolver(t *Theme) *Resolver {
	if t == nil {
		t = DefaultTheme()
	}
	return &Resolver{
		theme: t,
		memo:  gocache.New(gocache.NoExpiration, 0),
	}
}

// Resolve returns the class for scope. It has the core.ScopeResolver signature.
func (r *Resolver) Resolve(scope string) (string, bool) {
	if v, found := r.memo.Get(scope); found {
		if res, ok := v.(resolved); ok {
			return res.class, res.ok
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	class, ok := r.theme.Resolve(scope)
	r.memo.SetDefault(scope, resolved{class: class, ok: ok})
	return class, ok
}

// Theme returns the active theme.
func (r *Resolver) Theme() *Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.theme
}

// SetTheme replaces the active theme and forgets memoized lookups.
func (r *Resolver) SetTheme(t *Theme) {
	if t == nil {
		t = DefaultTheme()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.theme = t
	r.memo.Flush()
}

// Len returns the number of memoized scopes.
func (r *Resolver) Len() int {
	return r.memo.ItemCount()
}
