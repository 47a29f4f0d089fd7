// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries call the registered hooks at interesting points (a morph
// starting, a frame being painted, a cache lookup, an HTTP request being
// served) without depending on any metrics backend. main registers real
// implementations at startup; the defaults do nothing.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMorphHooks(&myMorphHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Morph().OnMorphStart(ctx, sessionID, rows, cols, steps)
//	// ... paint frames ...
//	observability.Morph().OnMorphComplete(ctx, sessionID, frames, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Morph Hooks
// =============================================================================

// MorphHooks receives events from the morph engine.
type MorphHooks interface {
	OnMorphStart(ctx context.Context, sessionID string, rows, cols, steps int)
	OnFrame(ctx context.Context, sessionID string, step int, alpha float64, duration time.Duration)
	OnMorphComplete(ctx context.Context, sessionID string, frames int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a finished response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMorphHooks is a no-op implementation of MorphHooks.
type NoopMorphHooks struct{}

func (NoopMorphHooks) OnMorphStart(context.Context, string, int, int, int)                {}
func (NoopMorphHooks) OnFrame(context.Context, string, int, float64, time.Duration)       {}
func (NoopMorphHooks) OnMorphComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	morphHooks MorphHooks = NoopMorphHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetMorphHooks registers custom morph hooks.
// This should be called once at application startup before any morph runs.
func SetMorphHooks(h MorphHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		morphHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Morph returns the registered morph hooks.
func Morph() MorphHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return morphHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	morphHooks = NoopMorphHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
