// Package adapters はsymbolsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"

	"finmonitor_backend/internal/feature/symbols/domain/entity"
	"finmonitor_backend/internal/feature/symbols/usecase"
)

// symbolPostgres はSymbolRepositoryインターフェースのPostgres実装です。
type symbolPostgres struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolPostgres)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolPostgresリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolPostgres {
	return &symbolPostgres{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolPostgres) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolPostgres) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Seed は銘柄ディレクトリが空の場合に初期データを投入します。
func (r *symbolPostgres) Seed(ctx context.Context, symbols []entity.Symbol) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Symbol{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 || len(symbols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&symbols).Error
}
