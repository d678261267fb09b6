// Package usecase はポートフォリオと保有銘柄操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"finmonitor_backend/internal/feature/portfolio/domain"
	"finmonitor_backend/internal/feature/portfolio/domain/entity"
)

// PortfolioRepository はポートフォリオの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PortfolioRepository interface {
	Create(ctx context.Context, p entity.Portfolio) error
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Portfolio, error)
	Get(ctx context.Context, ownerID, id string) (entity.Portfolio, error)
	Update(ctx context.Context, p entity.Portfolio) error
	Delete(ctx context.Context, ownerID, id string) error
}

// HoldingRepository は保有銘柄の永続化レイヤーを抽象化します。
type HoldingRepository interface {
	Insert(ctx context.Context, h entity.Holding) error
	ListByPortfolio(ctx context.Context, portfolioID string) ([]entity.Holding, error)
	Delete(ctx context.Context, portfolioID, holdingID string) error
	DeleteByPortfolio(ctx context.Context, portfolioID string) error
}

// SnapshotPurger はポートフォリオ削除時に評価額系列を道連れにするための
// フックです。nilの場合は系列の掃除をスキップします。
type SnapshotPurger interface {
	DeleteByPortfolio(ctx context.Context, portfolioID string) error
}

// PortfolioUsecase はポートフォリオ操作のユースケースを定義します。
//
// 同一ポートフォリオに対する保有銘柄の変更（追加・削除・カスケード削除）は
// ポートフォリオ単位のミューテックスで直列化します。並行するaddとdeleteが
// 保有リストを壊さないためのもので、異なるポートフォリオ同士は並行に進みます。
type PortfolioUsecase struct {
	portfolios PortfolioRepository
	holdings   HoldingRepository
	snapshots  SnapshotPurger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPortfolioUsecase はPortfolioUsecaseの新しいインスタンスを生成します。
// snapshotsはnil可です。
func NewPortfolioUsecase(portfolios PortfolioRepository, holdings HoldingRepository, snapshots SnapshotPurger) *PortfolioUsecase {
	return &PortfolioUsecase{
		portfolios: portfolios,
		holdings:   holdings,
		snapshots:  snapshots,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockPortfolio はポートフォリオ単位のロックを取得して返します。
func (pu *PortfolioUsecase) lockPortfolio(id string) *sync.Mutex {
	pu.mu.Lock()
	l, ok := pu.locks[id]
	if !ok {
		l = &sync.Mutex{}
		pu.locks[id] = l
	}
	pu.mu.Unlock()
	l.Lock()
	return l
}

// CreatePortfolio は新しいポートフォリオを作成します。
func (pu *PortfolioUsecase) CreatePortfolio(ctx context.Context, ownerID, name, description string) (entity.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.Portfolio{}, domain.ErrNameRequired
	}

	now := time.Now().UTC()
	p := entity.Portfolio{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := pu.portfolios.Create(ctx, p); err != nil {
		return entity.Portfolio{}, err
	}
	return p, nil
}

// ListPortfolios はオーナーのポートフォリオ一覧を返します。
func (pu *PortfolioUsecase) ListPortfolios(ctx context.Context, ownerID string) ([]entity.Portfolio, error) {
	return pu.portfolios.ListByOwner(ctx, ownerID)
}

// GetPortfolio はオーナーのポートフォリオを1件返します。
func (pu *PortfolioUsecase) GetPortfolio(ctx context.Context, ownerID, id string) (entity.Portfolio, error) {
	return pu.portfolios.Get(ctx, ownerID, id)
}

// UpdatePortfolio は名前と説明を更新します。
func (pu *PortfolioUsecase) UpdatePortfolio(ctx context.Context, ownerID, id, name, description string) (entity.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.Portfolio{}, domain.ErrNameRequired
	}

	p, err := pu.portfolios.Get(ctx, ownerID, id)
	if err != nil {
		return entity.Portfolio{}, err
	}
	p.Name = name
	p.Description = strings.TrimSpace(description)
	p.UpdatedAt = time.Now().UTC()

	if err := pu.portfolios.Update(ctx, p); err != nil {
		return entity.Portfolio{}, err
	}
	return p, nil
}

// DeletePortfolio はポートフォリオと、そのポートフォリオの保有銘柄のみを削除します。
// 他のポートフォリオの保有銘柄には触れません。
func (pu *PortfolioUsecase) DeletePortfolio(ctx context.Context, ownerID, id string) error {
	l := pu.lockPortfolio(id)
	defer l.Unlock()

	if err := pu.portfolios.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if err := pu.holdings.DeleteByPortfolio(ctx, id); err != nil {
		return err
	}
	if pu.snapshots != nil {
		return pu.snapshots.DeleteByPortfolio(ctx, id)
	}
	return nil
}

// AddHolding は保有銘柄を追加します。バリデーションは永続化の前に行い、
// 失敗時には何も適用されません。
func (pu *PortfolioUsecase) AddHolding(ctx context.Context, ownerID, portfolioID, symbol string, quantity, purchasePrice float64, purchaseDate time.Time) (entity.Holding, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return entity.Holding{}, domain.ErrSymbolRequired
	}
	if quantity <= 0 {
		return entity.Holding{}, domain.ErrInvalidQuantity
	}
	if purchasePrice < 0 {
		return entity.Holding{}, domain.ErrInvalidPurchasePrice
	}
	if purchaseDate.IsZero() {
		purchaseDate = time.Now().UTC()
	}

	l := pu.lockPortfolio(portfolioID)
	defer l.Unlock()

	// 所有確認（存在しない・他人のポートフォリオはNotFound）
	if _, err := pu.portfolios.Get(ctx, ownerID, portfolioID); err != nil {
		return entity.Holding{}, err
	}

	h := entity.Holding{
		ID:            uuid.NewString(),
		PortfolioID:   portfolioID,
		Symbol:        symbol,
		Quantity:      quantity,
		PurchasePrice: purchasePrice,
		PurchaseDate:  purchaseDate,
		CreatedAt:     time.Now().UTC(),
	}
	if err := pu.holdings.Insert(ctx, h); err != nil {
		return entity.Holding{}, err
	}
	return h, nil
}

// ListHoldings はポートフォリオの保有銘柄一覧を返します。
func (pu *PortfolioUsecase) ListHoldings(ctx context.Context, ownerID, portfolioID string) ([]entity.Holding, error) {
	if _, err := pu.portfolios.Get(ctx, ownerID, portfolioID); err != nil {
		return nil, err
	}
	return pu.holdings.ListByPortfolio(ctx, portfolioID)
}

// RemoveHolding は保有銘柄を1件削除します。
func (pu *PortfolioUsecase) RemoveHolding(ctx context.Context, ownerID, portfolioID, holdingID string) error {
	l := pu.lockPortfolio(portfolioID)
	defer l.Unlock()

	if _, err := pu.portfolios.Get(ctx, ownerID, portfolioID); err != nil {
		return err
	}
	return pu.holdings.Delete(ctx, portfolioID, holdingID)
}
