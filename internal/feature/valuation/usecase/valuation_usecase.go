// Package usecase はポートフォリオ評価額の計算とスナップショット系列を実装します。
package usecase

import (
	"context"
	"time"

	pentity "finmonitor_backend/internal/feature/portfolio/domain/entity"
	qentity "finmonitor_backend/internal/feature/quotes/domain/entity"
	"finmonitor_backend/internal/feature/valuation/domain/entity"
)

const (
	// DefaultHistoryDays は履歴取得のデフォルト期間です。
	DefaultHistoryDays = 30
	// MaxHistoryDays は履歴取得期間の上限です。
	MaxHistoryDays = 365
	// DefaultRetention はスナップショット系列の保持期間です。
	DefaultRetention = 30 * 24 * time.Hour
)

// QuoteSource は株価ストアの読み取りインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type QuoteSource interface {
	// Get は鮮度を問わずキャッシュ済みの株価を返します。
	Get(symbol string) (qentity.Quote, bool)
	// GetFresh はTTL内の株価のみを返します。
	GetFresh(symbol string) (qentity.Quote, bool)
}

// PortfolioReader はポートフォリオの所有確認付き読み取りを抽象化します。
type PortfolioReader interface {
	Get(ctx context.Context, ownerID, id string) (pentity.Portfolio, error)
}

// HoldingReader は保有銘柄の読み取りを抽象化します。
type HoldingReader interface {
	ListByPortfolio(ctx context.Context, portfolioID string) ([]pentity.Holding, error)
}

// SnapshotRepository は評価額スナップショット系列の永続化を抽象化します。
type SnapshotRepository interface {
	Append(ctx context.Context, p entity.SnapshotPoint) error
	Series(ctx context.Context, portfolioID string, since time.Time) ([]entity.SnapshotPoint, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// ValuationUsecase はポートフォリオ評価のユースケースを定義します。
//
// 評価は1銘柄の不調で全体を失敗させません。株価がTTL内になければ期限切れ
// キャッシュで、それもなければ取得価格で計算し、Valuation全体に
// Incomplete フラグを立てて劣化を明示します。
type ValuationUsecase struct {
	portfolios PortfolioReader
	holdings   HoldingReader
	quotes     QuoteSource
	snapshots  SnapshotRepository
}

// NewValuationUsecase はValuationUsecaseの新しいインスタンスを生成します。
func NewValuationUsecase(portfolios PortfolioReader, holdings HoldingReader, quotes QuoteSource, snapshots SnapshotRepository) *ValuationUsecase {
	return &ValuationUsecase{
		portfolios: portfolios,
		holdings:   holdings,
		quotes:     quotes,
		snapshots:  snapshots,
	}
}

// Compute はオーナーのポートフォリオの現在評価額を返します。
func (vu *ValuationUsecase) Compute(ctx context.Context, ownerID, portfolioID string) (entity.Valuation, error) {
	if _, err := vu.portfolios.Get(ctx, ownerID, portfolioID); err != nil {
		return entity.Valuation{}, err
	}
	return vu.computePortfolio(ctx, portfolioID)
}

// computePortfolio は所有確認なしで評価額を計算します。スナップショットジョブは
// 列挙済みのポートフォリオに対してこちらを使います。
func (vu *ValuationUsecase) computePortfolio(ctx context.Context, portfolioID string) (entity.Valuation, error) {
	hs, err := vu.holdings.ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return entity.Valuation{}, err
	}

	v := entity.Valuation{
		PortfolioID: portfolioID,
		AsOf:        time.Now().UTC(),
		Holdings:    make([]entity.HoldingValuation, 0, len(hs)),
	}
	for _, h := range hs {
		hv := vu.valueHolding(h)
		if hv.Stale || hv.Missing {
			v.Incomplete = true
		}
		v.MarketValue += hv.MarketValue
		v.CostBasis += hv.CostBasis
		v.UnrealizedPnL += hv.UnrealizedPnL
		v.Holdings = append(v.Holdings, hv)
	}
	if v.CostBasis > 0 {
		v.UnrealizedPnLPct = v.UnrealizedPnL / v.CostBasis
	}
	return v, nil
}

// valueHolding は保有銘柄1件を評価します。価格の選択順は
// TTL内キャッシュ → 期限切れキャッシュ（Stale）→ 取得価格（Missing）です。
func (vu *ValuationUsecase) valueHolding(h pentity.Holding) entity.HoldingValuation {
	hv := entity.HoldingValuation{
		HoldingID: h.ID,
		Symbol:    h.Symbol,
		Quantity:  h.Quantity,
		CostBasis: h.Quantity * h.PurchasePrice,
	}

	if q, ok := vu.quotes.GetFresh(h.Symbol); ok {
		hv.Price = q.Price
	} else if q, ok := vu.quotes.Get(h.Symbol); ok {
		hv.Price = q.Price
		hv.Stale = true
	} else {
		hv.Price = h.PurchasePrice
		hv.Missing = true
	}

	hv.MarketValue = h.Quantity * hv.Price
	hv.UnrealizedPnL = hv.MarketValue - hv.CostBasis
	if hv.CostBasis > 0 {
		hv.UnrealizedPnLPct = hv.UnrealizedPnL / hv.CostBasis
	}
	return hv
}

// History はオーナーのポートフォリオのスナップショット系列を返します。
// daysが範囲外の場合はデフォルト期間に丸めます。
func (vu *ValuationUsecase) History(ctx context.Context, ownerID, portfolioID string, days int) ([]entity.SnapshotPoint, error) {
	if _, err := vu.portfolios.Get(ctx, ownerID, portfolioID); err != nil {
		return nil, err
	}
	if days <= 0 || days > MaxHistoryDays {
		days = DefaultHistoryDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return vu.snapshots.Series(ctx, portfolioID, since)
}

// SnapshotPortfolio は評価額を1点サンプリングして系列へ追記します。
// スナップショットジョブから定期的に呼ばれます。
func (vu *ValuationUsecase) SnapshotPortfolio(ctx context.Context, portfolioID string) error {
	v, err := vu.computePortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}
	return vu.snapshots.Append(ctx, entity.SnapshotPoint{
		PortfolioID:   portfolioID,
		TakenAt:       v.AsOf,
		MarketValue:   v.MarketValue,
		CostBasis:     v.CostBasis,
		UnrealizedPnL: v.UnrealizedPnL,
		Incomplete:    v.Incomplete,
	})
}

// PruneSnapshots は保持期間を過ぎた点を削除し、削除数を返します。
func (vu *ValuationUsecase) PruneSnapshots(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return vu.snapshots.Prune(ctx, time.Now().UTC().Add(-retention))
}
