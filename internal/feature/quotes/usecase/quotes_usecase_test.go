package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"finmonitor_backend/internal/feature/quotes/domain"
	"finmonitor_backend/internal/feature/quotes/domain/entity"
)

// mockCache はテスト用のQuoteCacheモック実装です。
type mockCache struct {
	fresh map[string]entity.Quote
	any   map[string]entity.Quote
}

func (m *mockCache) GetFresh(symbol string) (entity.Quote, bool) {
	q, ok := m.fresh[symbol]
	return q, ok
}

func (m *mockCache) Get(symbol string) (entity.Quote, bool) {
	q, ok := m.any[symbol]
	return q, ok
}

// mockRefresher はテスト用のQuoteRefresherモック実装です。
type mockRefresher struct {
	refreshFn func(ctx context.Context, symbol string) (entity.Quote, error)
}

func (m *mockRefresher) Refresh(ctx context.Context, symbol string) (entity.Quote, error) {
	return m.refreshFn(ctx, symbol)
}

// TestGetQuote_FreshHit はTTL内のキャッシュヒットがリフレッシュを起こさないことを検証します。
func TestGetQuote_FreshHit(t *testing.T) {
	t.Parallel()

	cached := entity.Quote{Symbol: "AAPL", Price: 175.50, FetchedAt: time.Now()}
	cache := &mockCache{
		fresh: map[string]entity.Quote{"AAPL": cached},
		any:   map[string]entity.Quote{"AAPL": cached},
	}
	refresherCalled := false
	refresher := &mockRefresher{
		refreshFn: func(ctx context.Context, symbol string) (entity.Quote, error) {
			refresherCalled = true
			return entity.Quote{}, nil
		},
	}

	uc := NewQuotesUsecase(cache, refresher, time.Second)
	res, err := uc.GetQuote(context.Background(), "aapl ")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refresherCalled {
		t.Error("fresh cache hit must not trigger a refresh")
	}
	if res.Stale {
		t.Error("fresh hit must not be flagged stale")
	}
	if res.Quote.Price != 175.50 {
		t.Errorf("unexpected quote: %+v", res.Quote)
	}
}

// TestGetQuote_StaleServe は上流失敗時にキャッシュ値がstale=trueで返ることを検証します。
func TestGetQuote_StaleServe(t *testing.T) {
	t.Parallel()

	stale := entity.Quote{Symbol: "AAPL", Price: 170.00, FetchedAt: time.Now().Add(-time.Hour)}
	cache := &mockCache{
		fresh: map[string]entity.Quote{},
		any:   map[string]entity.Quote{"AAPL": stale},
	}
	refresher := &mockRefresher{
		refreshFn: func(ctx context.Context, symbol string) (entity.Quote, error) {
			return entity.Quote{}, domain.ErrUpstreamUnavailable
		},
	}

	uc := NewQuotesUsecase(cache, refresher, time.Second)
	res, err := uc.GetQuote(context.Background(), "AAPL")

	if err != nil {
		t.Fatalf("stale cache must be preferred over total failure, got error: %v", err)
	}
	if !res.Stale {
		t.Error("expected stale flag on fallback result")
	}
	if res.Quote.Price != 170.00 {
		t.Errorf("unexpected quote: %+v", res.Quote)
	}
}

// TestGetQuote_NoCacheNoUpstream はキャッシュも上流も無い場合に
// ErrUpstreamUnavailableが呼び出し元へ伝播することを検証します。
func TestGetQuote_NoCacheNoUpstream(t *testing.T) {
	t.Parallel()

	cache := &mockCache{fresh: map[string]entity.Quote{}, any: map[string]entity.Quote{}}
	refresher := &mockRefresher{
		refreshFn: func(ctx context.Context, symbol string) (entity.Quote, error) {
			return entity.Quote{}, domain.ErrUpstreamUnavailable
		},
	}

	uc := NewQuotesUsecase(cache, refresher, time.Second)
	_, err := uc.GetQuote(context.Background(), "AAPL")

	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

// TestGetQuotes_PartialFailure は銘柄単位の失敗がバッチを中断しないことを検証します。
func TestGetQuotes_PartialFailure(t *testing.T) {
	t.Parallel()

	cache := &mockCache{fresh: map[string]entity.Quote{}, any: map[string]entity.Quote{}}
	refresher := &mockRefresher{
		refreshFn: func(ctx context.Context, symbol string) (entity.Quote, error) {
			if symbol == "BAD" {
				return entity.Quote{}, domain.ErrUpstreamUnavailable
			}
			return entity.Quote{Symbol: symbol, Price: 1, FetchedAt: time.Now()}, nil
		},
	}

	uc := NewQuotesUsecase(cache, refresher, time.Second)
	results, errs, err := uc.GetQuotes(context.Background(), []string{"AAPL", "BAD", "MSFT"})

	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if len(errs) != 1 || !errors.Is(errs["BAD"], domain.ErrUpstreamUnavailable) {
		t.Errorf("expected BAD to fail with ErrUpstreamUnavailable, got %v", errs)
	}
}

// TestGetQuotes_NoSymbols は空入力がErrNoSymbolsになることを検証します。
func TestGetQuotes_NoSymbols(t *testing.T) {
	t.Parallel()

	uc := NewQuotesUsecase(&mockCache{}, &mockRefresher{}, time.Second)

	if _, _, err := uc.GetQuotes(context.Background(), []string{" ", ""}); !errors.Is(err, domain.ErrNoSymbols) {
		t.Errorf("expected ErrNoSymbols, got %v", err)
	}
}

// TestNormalizeSymbols は正規化と重複除去を検証します。
func TestNormalizeSymbols(t *testing.T) {
	t.Parallel()

	got := NormalizeSymbols([]string{" aapl", "AAPL", "msft ", "", "MSFT"})

	want := []string{"AAPL", "MSFT"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}
