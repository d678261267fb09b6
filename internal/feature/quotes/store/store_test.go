package store

import (
	"testing"
	"time"

	"finmonitor_backend/internal/feature/quotes/domain/entity"
)

// TestStore_GetFresh はTTL内のエントリのみがフレッシュとして返ることを検証します。
func TestStore_GetFresh(t *testing.T) {
	t.Parallel()

	s := NewStore(30*time.Second, time.Hour)

	fresh := entity.Quote{Symbol: "AAPL", Price: 175.50, FetchedAt: time.Now()}
	stale := entity.Quote{Symbol: "MSFT", Price: 380.20, FetchedAt: time.Now().Add(-time.Minute)}
	s.Set(fresh)
	s.Set(stale)

	if q, ok := s.GetFresh("AAPL"); !ok || q.Price != 175.50 {
		t.Errorf("expected fresh AAPL quote, got ok=%v q=%+v", ok, q)
	}
	if _, ok := s.GetFresh("MSFT"); ok {
		t.Error("expected MSFT quote to be outside TTL")
	}
	// GetはTTLに関わらずキャッシュ値を返す
	if q, ok := s.Get("MSFT"); !ok || q.Price != 380.20 {
		t.Errorf("expected cached MSFT quote regardless of age, got ok=%v q=%+v", ok, q)
	}
}

// TestStore_Set_FetchedAtMonotonic は古いフェッチ結果が新しいエントリを上書きしないことを検証します。
func TestStore_Set_FetchedAtMonotonic(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute, time.Hour)
	now := time.Now()

	s.Set(entity.Quote{Symbol: "AAPL", Price: 176.00, FetchedAt: now})
	// 遅れて届いた古いフェッチ結果
	s.Set(entity.Quote{Symbol: "AAPL", Price: 175.00, FetchedAt: now.Add(-10 * time.Second)})

	q, ok := s.Get("AAPL")
	if !ok {
		t.Fatal("expected AAPL entry")
	}
	if q.Price != 176.00 {
		t.Errorf("older fetch overwrote newer entry: got price %v", q.Price)
	}
}

// TestStore_Evict はmax-stalenessを超えたエントリのみが削除されることを検証します。
func TestStore_Evict(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Second, time.Minute)

	s.Set(entity.Quote{Symbol: "OLD", FetchedAt: time.Now().Add(-2 * time.Minute)})
	s.Set(entity.Quote{Symbol: "NEW", FetchedAt: time.Now()})

	removed := s.Evict()

	if removed != 1 {
		t.Errorf("expected 1 eviction, got %d", removed)
	}
	if _, ok := s.Get("OLD"); ok {
		t.Error("expected OLD to be evicted")
	}
	if _, ok := s.Get("NEW"); !ok {
		t.Error("expected NEW to survive eviction")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Len())
	}
}
