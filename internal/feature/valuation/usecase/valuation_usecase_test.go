package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"finmonitor_backend/internal/feature/portfolio/domain"
	pentity "finmonitor_backend/internal/feature/portfolio/domain/entity"
	qentity "finmonitor_backend/internal/feature/quotes/domain/entity"
	"finmonitor_backend/internal/feature/valuation/domain/entity"
)

// fakeQuoteSource は鮮度を制御できる株価ソースです。
type fakeQuoteSource struct {
	fresh map[string]float64
	stale map[string]float64
}

func (f *fakeQuoteSource) GetFresh(symbol string) (qentity.Quote, bool) {
	p, ok := f.fresh[symbol]
	if !ok {
		return qentity.Quote{}, false
	}
	return qentity.Quote{Symbol: symbol, Price: p, FetchedAt: time.Now()}, true
}

func (f *fakeQuoteSource) Get(symbol string) (qentity.Quote, bool) {
	if q, ok := f.GetFresh(symbol); ok {
		return q, true
	}
	p, ok := f.stale[symbol]
	if !ok {
		return qentity.Quote{}, false
	}
	return qentity.Quote{Symbol: symbol, Price: p, FetchedAt: time.Now().Add(-time.Hour)}, true
}

type fakePortfolioReader struct {
	portfolio pentity.Portfolio
}

func (f *fakePortfolioReader) Get(ctx context.Context, ownerID, id string) (pentity.Portfolio, error) {
	if f.portfolio.ID != id || f.portfolio.OwnerID != ownerID {
		return pentity.Portfolio{}, domain.ErrPortfolioNotFound
	}
	return f.portfolio, nil
}

type fakeHoldingReader struct {
	holdings []pentity.Holding
}

func (f *fakeHoldingReader) ListByPortfolio(ctx context.Context, portfolioID string) ([]pentity.Holding, error) {
	return f.holdings, nil
}

// fakeSnapshotRepo はメモリ上のSnapshotRepository実装です。
type fakeSnapshotRepo struct {
	mu     sync.Mutex
	points []entity.SnapshotPoint
}

func (f *fakeSnapshotRepo) Append(ctx context.Context, p entity.SnapshotPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
	return nil
}

func (f *fakeSnapshotRepo) Series(ctx context.Context, portfolioID string, since time.Time) ([]entity.SnapshotPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.SnapshotPoint{}
	for _, p := range f.points {
		if p.PortfolioID == portfolioID && !p.TakenAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSnapshotRepo) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.points[:0]
	var removed int64
	for _, p := range f.points {
		if p.TakenAt.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	f.points = kept
	return removed, nil
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestUsecase(holdings []pentity.Holding, quotes *fakeQuoteSource) (*ValuationUsecase, *fakeSnapshotRepo) {
	snapshots := &fakeSnapshotRepo{}
	uc := NewValuationUsecase(
		&fakePortfolioReader{portfolio: pentity.Portfolio{ID: "p-1", OwnerID: "owner-1"}},
		&fakeHoldingReader{holdings: holdings},
		quotes,
		snapshots,
	)
	return uc, snapshots
}

// TestCompute_FreshQuotes は全銘柄の株価が新鮮なときの合計を検証します。
func TestCompute_FreshQuotes(t *testing.T) {
	t.Parallel()

	holdings := []pentity.Holding{
		{ID: "h-1", PortfolioID: "p-1", Symbol: "AAPL", Quantity: 10, PurchasePrice: 100},
		{ID: "h-2", PortfolioID: "p-1", Symbol: "MSFT", Quantity: 5, PurchasePrice: 180},
	}
	quotes := &fakeQuoteSource{fresh: map[string]float64{"AAPL": 150, "MSFT": 200}}
	uc, _ := newTestUsecase(holdings, quotes)

	v, err := uc.Compute(context.Background(), "owner-1", "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(v.MarketValue, 2500) {
		t.Errorf("expected market value 2500, got %v", v.MarketValue)
	}
	if !almostEqual(v.UnrealizedPnL, 600) {
		t.Errorf("expected pnl 600, got %v", v.UnrealizedPnL)
	}
	if !almostEqual(v.CostBasis, 1900) {
		t.Errorf("expected cost basis 1900, got %v", v.CostBasis)
	}
	if v.Incomplete {
		t.Error("expected complete valuation with fresh quotes")
	}
	// 銘柄単位の内訳: AAPL 10株 +$500、MSFT 5株 +$100
	if !almostEqual(v.Holdings[0].UnrealizedPnL, 500) {
		t.Errorf("expected AAPL pnl 500, got %v", v.Holdings[0].UnrealizedPnL)
	}
	if !almostEqual(v.Holdings[1].UnrealizedPnL, 100) {
		t.Errorf("expected MSFT pnl 100, got %v", v.Holdings[1].UnrealizedPnL)
	}
}

// TestCompute_StaleQuote は期限切れ株価の銘柄が合計に含まれつつ
// Incompleteが立つことを検証します。
func TestCompute_StaleQuote(t *testing.T) {
	t.Parallel()

	holdings := []pentity.Holding{
		{ID: "h-1", PortfolioID: "p-1", Symbol: "AAPL", Quantity: 10, PurchasePrice: 100},
		{ID: "h-2", PortfolioID: "p-1", Symbol: "MSFT", Quantity: 5, PurchasePrice: 180},
	}
	quotes := &fakeQuoteSource{
		fresh: map[string]float64{"AAPL": 150},
		stale: map[string]float64{"MSFT": 190},
	}
	uc, _ := newTestUsecase(holdings, quotes)

	v, err := uc.Compute(context.Background(), "owner-1", "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !v.Incomplete {
		t.Error("expected incomplete valuation with one stale holding")
	}
	if !almostEqual(v.MarketValue, 10*150+5*190) {
		t.Errorf("expected stale price included in total, got %v", v.MarketValue)
	}
	if !v.Holdings[1].Stale {
		t.Error("expected MSFT holding flagged stale")
	}
	if v.Holdings[0].Stale || v.Holdings[0].Missing {
		t.Error("expected AAPL holding unflagged")
	}
}

// TestCompute_MissingQuote は株価が全くない銘柄が取得価格で評価され、
// Incompleteが立つことを検証します。
func TestCompute_MissingQuote(t *testing.T) {
	t.Parallel()

	holdings := []pentity.Holding{
		{ID: "h-1", PortfolioID: "p-1", Symbol: "AAPL", Quantity: 10, PurchasePrice: 100},
		{ID: "h-2", PortfolioID: "p-1", Symbol: "UNKNOWN", Quantity: 4, PurchasePrice: 50},
	}
	quotes := &fakeQuoteSource{fresh: map[string]float64{"AAPL": 150}}
	uc, _ := newTestUsecase(holdings, quotes)

	v, err := uc.Compute(context.Background(), "owner-1", "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !v.Incomplete {
		t.Error("expected incomplete valuation with missing quote")
	}
	// フォールバック銘柄の損益は0（取得価格=評価価格）
	if !almostEqual(v.Holdings[1].UnrealizedPnL, 0) {
		t.Errorf("expected zero pnl for fallback holding, got %v", v.Holdings[1].UnrealizedPnL)
	}
	if !v.Holdings[1].Missing {
		t.Error("expected holding flagged missing")
	}
	if !almostEqual(v.MarketValue, 10*150+4*50) {
		t.Errorf("unexpected market value %v", v.MarketValue)
	}
}

// TestCompute_OwnerScope は他人のポートフォリオがNotFoundになることを検証します。
func TestCompute_OwnerScope(t *testing.T) {
	t.Parallel()

	uc, _ := newTestUsecase(nil, &fakeQuoteSource{})

	_, err := uc.Compute(context.Background(), "owner-2", "p-1")
	if !errors.Is(err, domain.ErrPortfolioNotFound) {
		t.Errorf("expected ErrPortfolioNotFound, got %v", err)
	}
}

// TestSnapshotAndHistory はスナップショットの追記と期間取得、保持期間の
// 削除を検証します。
func TestSnapshotAndHistory(t *testing.T) {
	t.Parallel()

	holdings := []pentity.Holding{
		{ID: "h-1", PortfolioID: "p-1", Symbol: "AAPL", Quantity: 10, PurchasePrice: 100},
	}
	quotes := &fakeQuoteSource{fresh: map[string]float64{"AAPL": 150}}
	uc, snapshots := newTestUsecase(holdings, quotes)
	ctx := context.Background()

	if err := uc.SnapshotPortfolio(ctx, "p-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 保持期間外の古い点を直接仕込む
	snapshots.Append(ctx, entity.SnapshotPoint{
		PortfolioID: "p-1",
		TakenAt:     time.Now().UTC().Add(-40 * 24 * time.Hour),
		MarketValue: 1000,
	})

	points, err := uc.History(ctx, "owner-1", "p-1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point within 30 days, got %d", len(points))
	}
	if !almostEqual(points[0].MarketValue, 1500) {
		t.Errorf("expected snapshot market value 1500, got %v", points[0].MarketValue)
	}

	removed, err := uc.PruneSnapshots(ctx, DefaultRetention)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned point, got %d", removed)
	}
}
