package usecase

import (
	"context"
	"strings"

	"finmonitor_backend/internal/feature/news/domain/entity"
)

const (
	// DefaultListLimit はニュース一覧のデフォルト件数です。
	DefaultListLimit = 20
	// MaxListLimit はニュース一覧の上限件数です。
	MaxListLimit = 100
)

// NewsUsecase はニュースの読み出しユースケースを定義します。
type NewsUsecase struct {
	repo NewsRepository
}

// NewNewsUsecase はNewsUsecaseの新しいインスタンスを生成します。
func NewNewsUsecase(repo NewsRepository) *NewsUsecase {
	return &NewsUsecase{repo: repo}
}

// List は新しい順のニュース一覧を返します。symbolが空でなければ
// 関連銘柄で絞り込みます。limitは範囲外ならデフォルトに丸めます。
func (nu *NewsUsecase) List(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	return nu.repo.List(ctx, symbol, limit)
}
