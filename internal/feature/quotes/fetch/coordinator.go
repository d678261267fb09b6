// Package fetch implements the fetch coordinator: it turns "needs refresh"
// symbols into upstream calls under a global concurrency ceiling, collapsing
// duplicate in-flight requests so that at most one fetch per symbol runs at
// any instant.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"finmonitor_backend/internal/feature/quotes/domain"
	"finmonitor_backend/internal/feature/quotes/domain/entity"
	"finmonitor_backend/internal/shared/ratelimiter"
)

// QuoteProvider abstracts the upstream quote API.
// Following Go convention: interfaces are defined by the consumer (fetch), not the provider (adapters).
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (entity.Quote, error)
}

// QuoteSink receives completed fetches. The quote store implements it.
type QuoteSink interface {
	Set(q entity.Quote)
}

// Listener is notified after every successful refresh. The alert engine
// subscribes here so evaluation stays incremental: it only ever sees symbols
// that were actually refreshed.
type Listener interface {
	QuoteRefreshed(ctx context.Context, q entity.Quote)
}

// Config bounds the coordinator's resource usage.
type Config struct {
	MaxConcurrent    int64         // worker-pool ceiling, sized to the upstream rate budget
	MaxAttempts      int           // attempts per fetch, including the first
	BaseBackoff      time.Duration // first retry delay; doubles per attempt with jitter
	FetchTimeout     time.Duration // budget for one fetch including retries
	BreakerThreshold int           // consecutive failures before the circuit opens
	BreakerCooldown  time.Duration // how long an open circuit skips fetches
}

// DefaultConfig returns limits suited to a free-tier upstream plan.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:    4,
		MaxAttempts:      3,
		BaseBackoff:      200 * time.Millisecond,
		FetchTimeout:     15 * time.Second,
		BreakerThreshold: 3,
		BreakerCooldown:  time.Minute,
	}
}

// Coordinator deduplicates and bounds upstream quote fetches.
//
// Refresh runs the actual fetch on a detached context: a caller whose deadline
// expires stops waiting (and falls back to its stale cache), but the fetch is
// left running so the result still lands in the store for future readers.
// The singleflight group guarantees this never leaks more than one concurrent
// fetch per symbol.
type Coordinator struct {
	provider QuoteProvider
	sink     QuoteSink
	limiter  ratelimiter.RateLimiterInterface
	breaker  *CircuitBreaker
	cfg      Config

	group singleflight.Group
	sem   *semaphore.Weighted

	mu        sync.RWMutex
	listeners []Listener
}

// NewCoordinator creates a fetch coordinator writing completed fetches to sink.
func NewCoordinator(provider QuoteProvider, sink QuoteSink, limiter ratelimiter.RateLimiterInterface, cfg Config) *Coordinator {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = DefaultConfig().BaseBackoff
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}
	return &Coordinator{
		provider: provider,
		sink:     sink,
		limiter:  limiter,
		breaker:  NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		cfg:      cfg,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// AddListener registers a refresh listener. Not safe to call concurrently
// with Refresh; wire listeners during startup.
func (c *Coordinator) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Refresh fetches a quote for symbol, joining an already in-flight fetch if
// one exists. All waiters receive the same outcome. When ctx expires before
// the fetch completes, Refresh returns ctx.Err() while the fetch keeps
// running to populate the store.
func (c *Coordinator) Refresh(ctx context.Context, symbol string) (entity.Quote, error) {
	ch := c.group.DoChan(symbol, func() (any, error) {
		return c.fetch(symbol)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return entity.Quote{}, r.Err
		}
		return r.Val.(entity.Quote), nil
	case <-ctx.Done():
		return entity.Quote{}, ctx.Err()
	}
}

// RefreshBatch refreshes all symbols concurrently and returns the per-symbol
// errors. A failing symbol never aborts the rest of the batch.
func (c *Coordinator) RefreshBatch(ctx context.Context, symbols []string) map[string]error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = make(map[string]error)
	)
	for _, symbol := range symbols {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Refresh(ctx, symbol); err != nil {
				mu.Lock()
				errs[symbol] = err
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errs
}

// fetch performs the bounded, retried upstream call for one symbol.
// It runs on a context detached from any single caller.
func (c *Coordinator) fetch(symbol string) (entity.Quote, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.FetchTimeout)
	defer cancel()

	if !c.breaker.Allow(symbol) {
		return entity.Quote{}, fmt.Errorf("%w: %s", ErrCircuitOpen, symbol)
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return entity.Quote{}, fmt.Errorf("%w: worker pool saturated: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer c.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleepBackoff(ctx, attempt); err != nil {
				break
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		q, err := c.provider.FetchQuote(ctx, symbol)
		if err == nil {
			c.breaker.Success(symbol)
			c.sink.Set(q)
			c.notify(ctx, q)
			return q, nil
		}
		lastErr = err
		slog.Warn("quote fetch attempt failed", "symbol", symbol, "attempt", attempt+1, "error", err)
	}

	c.breaker.Failure(symbol)
	return entity.Quote{}, fmt.Errorf("%w: %s: %w", domain.ErrUpstreamUnavailable, symbol, lastErr)
}

// sleepBackoff waits for the exponential backoff of the given attempt,
// with up to 50% random jitter to avoid synchronized retries.
func (c *Coordinator) sleepBackoff(ctx context.Context, attempt int) error {
	backoff := c.cfg.BaseBackoff << (attempt - 1)
	backoff += rand.N(backoff / 2)
	select {
	case <-time.After(backoff):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) notify(ctx context.Context, q entity.Quote) {
	c.mu.RLock()
	listeners := c.listeners
	c.mu.RUnlock()
	for _, l := range listeners {
		l.QuoteRefreshed(ctx, q)
	}
}
