package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"finmonitor_backend/internal/feature/quotes/domain"
	"finmonitor_backend/internal/feature/quotes/domain/entity"
	"finmonitor_backend/internal/feature/quotes/store"
)

// mockProvider はテスト用のQuoteProviderモック実装です。
type mockProvider struct {
	calls   atomic.Int64
	fetchFn func(ctx context.Context, symbol string) (entity.Quote, error)
}

func (m *mockProvider) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	m.calls.Add(1)
	return m.fetchFn(ctx, symbol)
}

// mockListener は通知されたクオートを記録します。
type mockListener struct {
	mu      sync.Mutex
	symbols []string
}

func (m *mockListener) QuoteRefreshed(ctx context.Context, q entity.Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols = append(m.symbols, q.Symbol)
}

func testConfig() Config {
	return Config{
		MaxConcurrent:    4,
		MaxAttempts:      1,
		BaseBackoff:      time.Millisecond,
		FetchTimeout:     time.Second,
		BreakerThreshold: 3,
		BreakerCooldown:  time.Minute,
	}
}

// TestCoordinator_SingleFlight はキャッシュが空の状態でN個の並行Refreshが
// ちょうど1回の上流呼び出しに集約されることを検証します。
func TestCoordinator_SingleFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	provider := &mockProvider{
		fetchFn: func(ctx context.Context, symbol string) (entity.Quote, error) {
			<-release
			return entity.Quote{Symbol: symbol, Price: 175.50, FetchedAt: time.Now()}, nil
		},
	}
	s := store.NewStore(time.Minute, time.Hour)
	c := NewCoordinator(provider, s, nil, testConfig())

	const n = 10
	var wg sync.WaitGroup
	results := make([]entity.Quote, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Refresh(context.Background(), "AAPL")
		}()
	}
	// 全ゴルーチンがin-flightフェッチに合流するのを待ってから解放する
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := provider.calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 upstream call, got %d", got)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("waiter %d got error: %v", i, errs[i])
		}
		if results[i].Price != 175.50 {
			t.Errorf("waiter %d got unexpected quote: %+v", i, results[i])
		}
	}
	if _, ok := s.Get("AAPL"); !ok {
		t.Error("expected successful fetch to populate the store")
	}
}

// TestCoordinator_RetryThenFail はリトライ回数分失敗した後に
// ErrUpstreamUnavailableが返ることを検証します。
func TestCoordinator_RetryThenFail(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		fetchFn: func(ctx context.Context, symbol string) (entity.Quote, error) {
			return entity.Quote{}, errors.New("http 503")
		},
	}
	cfg := testConfig()
	cfg.MaxAttempts = 3
	c := NewCoordinator(provider, store.NewStore(time.Minute, time.Hour), nil, cfg)

	_, err := c.Refresh(context.Background(), "AAPL")

	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if got := provider.calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

// TestCoordinator_CircuitOpens は連続失敗が閾値に達すると上流呼び出しを
// スキップすることを検証します。
func TestCoordinator_CircuitOpens(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		fetchFn: func(ctx context.Context, symbol string) (entity.Quote, error) {
			return entity.Quote{}, errors.New("http 500")
		},
	}
	cfg := testConfig()
	cfg.BreakerThreshold = 2
	c := NewCoordinator(provider, store.NewStore(time.Minute, time.Hour), nil, cfg)

	// 閾値まで失敗させる（各Refreshは1回ずつ失敗を記録する）
	for i := 0; i < 2; i++ {
		if _, err := c.Refresh(context.Background(), "AAPL"); err == nil {
			t.Fatal("expected fetch error")
		}
	}
	before := provider.calls.Load()

	_, err := c.Refresh(context.Background(), "AAPL")

	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if got := provider.calls.Load(); got != before {
		t.Errorf("open circuit must not reach upstream: calls went %d -> %d", before, got)
	}
}

// TestCoordinator_CallerDeadlineDetaches は呼び出し元のデッドライン超過後も
// フェッチが継続してストアを埋めることを検証します。
func TestCoordinator_CallerDeadlineDetaches(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		fetchFn: func(ctx context.Context, symbol string) (entity.Quote, error) {
			time.Sleep(100 * time.Millisecond)
			return entity.Quote{Symbol: symbol, Price: 42, FetchedAt: time.Now()}, nil
		},
	}
	s := store.NewStore(time.Minute, time.Hour)
	listener := &mockListener{}
	c := NewCoordinator(provider, s, nil, testConfig())
	c.AddListener(listener)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Refresh(ctx, "AAPL")

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded for the caller, got %v", err)
	}

	// 切り離されたフェッチの完了を待つ
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := s.Get("AAPL"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("detached fetch never populated the store")
		}
		time.Sleep(10 * time.Millisecond)
	}

	listener.mu.Lock()
	defer listener.mu.Unlock()
	if len(listener.symbols) != 1 || listener.symbols[0] != "AAPL" {
		t.Errorf("expected one refresh notification for AAPL, got %v", listener.symbols)
	}
}

// TestCoordinator_RefreshBatch_PartialFailure は1銘柄の失敗がバッチ全体を
// 中断しないことを検証します。
func TestCoordinator_RefreshBatch_PartialFailure(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		fetchFn: func(ctx context.Context, symbol string) (entity.Quote, error) {
			if symbol == "BAD" {
				return entity.Quote{}, errors.New("http 500")
			}
			return entity.Quote{Symbol: symbol, Price: 1, FetchedAt: time.Now()}, nil
		},
	}
	s := store.NewStore(time.Minute, time.Hour)
	c := NewCoordinator(provider, s, nil, testConfig())

	errs := c.RefreshBatch(context.Background(), []string{"AAPL", "BAD", "MSFT"})

	if len(errs) != 1 {
		t.Fatalf("expected 1 failed symbol, got %d: %v", len(errs), errs)
	}
	if _, ok := errs["BAD"]; !ok {
		t.Errorf("expected BAD to fail, got %v", errs)
	}
	for _, sym := range []string{"AAPL", "MSFT"} {
		if _, ok := s.Get(sym); !ok {
			t.Errorf("expected %s to be refreshed despite the failing symbol", sym)
		}
	}
}
