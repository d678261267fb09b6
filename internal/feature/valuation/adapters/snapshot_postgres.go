// Package adapters は評価額スナップショット系列のPostgres実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"finmonitor_backend/internal/feature/valuation/domain/entity"
	"finmonitor_backend/internal/feature/valuation/usecase"
)

type snapshotPostgres struct {
	db *gorm.DB
}

var _ usecase.SnapshotRepository = (*snapshotPostgres)(nil)

func NewSnapshotRepository(db *gorm.DB) *snapshotPostgres {
	return &snapshotPostgres{db: db}
}

// SnapshotModel は評価額スナップショットのテーブル定義です。
// 系列は追記専用で、更新系のクエリは持ちません。
type SnapshotModel struct {
	ID          uint      `gorm:"primaryKey"`
	PortfolioID string    `gorm:"size:36;not null;index:snapshot_pf_time,priority:1"`
	TakenAt     time.Time `gorm:"not null;index:snapshot_pf_time,priority:2"`

	MarketValue   float64 `gorm:"not null"`
	CostBasis     float64 `gorm:"not null"`
	UnrealizedPnL float64 `gorm:"not null"`
	Incomplete    bool    `gorm:"not null;default:false"`
}

func (SnapshotModel) TableName() string {
	return "valuation_snapshots"
}

func toModel(p entity.SnapshotPoint) SnapshotModel {
	return SnapshotModel{
		PortfolioID:   p.PortfolioID,
		TakenAt:       p.TakenAt,
		MarketValue:   p.MarketValue,
		CostBasis:     p.CostBasis,
		UnrealizedPnL: p.UnrealizedPnL,
		Incomplete:    p.Incomplete,
	}
}

func (r *snapshotPostgres) Append(ctx context.Context, p entity.SnapshotPoint) error {
	m := toModel(p)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *snapshotPostgres) Series(ctx context.Context, portfolioID string, since time.Time) ([]entity.SnapshotPoint, error) {
	var rows []SnapshotModel
	err := r.db.WithContext(ctx).
		Where("portfolio_id = ? AND taken_at >= ?", portfolioID, since).
		Order("taken_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.SnapshotPoint, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.SnapshotPoint{
			PortfolioID:   m.PortfolioID,
			TakenAt:       m.TakenAt,
			MarketValue:   m.MarketValue,
			CostBasis:     m.CostBasis,
			UnrealizedPnL: m.UnrealizedPnL,
			Incomplete:    m.Incomplete,
		})
	}
	return out, nil
}

// Prune は保持期間を過ぎた点を全ポートフォリオ分まとめて削除します。
func (r *snapshotPostgres) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("taken_at < ?", olderThan).
		Delete(&SnapshotModel{})
	return res.RowsAffected, res.Error
}

// DeleteByPortfolio はポートフォリオ削除時に系列を道連れにします。
func (r *snapshotPostgres) DeleteByPortfolio(ctx context.Context, portfolioID string) error {
	return r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Delete(&SnapshotModel{}).Error
}
