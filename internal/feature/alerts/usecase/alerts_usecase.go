// Package usecase はアラートルールのオーナー操作を実装します。
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"finmonitor_backend/internal/feature/alerts/domain"
	"finmonitor_backend/internal/feature/alerts/domain/entity"
)

// AlertRepository はアラートルールの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type AlertRepository interface {
	Create(ctx context.Context, rule entity.AlertRule) error
	ListByOwner(ctx context.Context, ownerID string) ([]entity.AlertRule, error)
	Get(ctx context.Context, ownerID, id string) (entity.AlertRule, error)
	Delete(ctx context.Context, ownerID, id string) error
	Rearm(ctx context.Context, id string) (bool, error)
	SetStatus(ctx context.Context, ownerID, id string, status entity.Status) error
	ActiveSymbols(ctx context.Context) ([]string, error)
}

// AlertUsecase はアラートルールのCRUDとオーナーによる状態操作を定義します。
// 評価と発火はengineパッケージの持ち分で、ここには現れません。
type AlertUsecase struct {
	repo AlertRepository
}

// NewAlertUsecase はAlertUsecaseの新しいインスタンスを生成します。
func NewAlertUsecase(repo AlertRepository) *AlertUsecase {
	return &AlertUsecase{repo: repo}
}

// CreateRule は新しいルールを作成します。バリデーションは永続化の前に行い、
// 失敗時には何も適用されません。
func (au *AlertUsecase) CreateRule(ctx context.Context, ownerID, symbol string, condition entity.Condition, threshold float64, rearm bool, rearmMargin float64) (entity.AlertRule, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return entity.AlertRule{}, domain.ErrSymbolRequired
	}
	if condition != entity.ConditionAbove && condition != entity.ConditionBelow {
		return entity.AlertRule{}, domain.ErrInvalidCondition
	}
	if threshold <= 0 {
		return entity.AlertRule{}, domain.ErrInvalidThreshold
	}
	if rearmMargin < 0 {
		rearmMargin = 0
	}

	rule := entity.AlertRule{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Symbol:      symbol,
		Condition:   condition,
		Threshold:   threshold,
		Status:      entity.StatusActive,
		Rearm:       rearm,
		RearmMargin: rearmMargin,
		CreatedAt:   time.Now().UTC(),
	}
	if err := au.repo.Create(ctx, rule); err != nil {
		return entity.AlertRule{}, err
	}
	return rule, nil
}

// ListRules はオーナーのルール一覧を返します。
func (au *AlertUsecase) ListRules(ctx context.Context, ownerID string) ([]entity.AlertRule, error) {
	return au.repo.ListByOwner(ctx, ownerID)
}

// DeleteRule はオーナーのルールを削除します。
func (au *AlertUsecase) DeleteRule(ctx context.Context, ownerID, id string) error {
	return au.repo.Delete(ctx, ownerID, id)
}

// ResetRule はtriggeredなルールをオーナー操作でactiveへ戻します。
// triggered以外の状態からはErrNotTriggeredを返します。
func (au *AlertUsecase) ResetRule(ctx context.Context, ownerID, id string) error {
	// 所有確認（他人のルールはNotFound）
	if _, err := au.repo.Get(ctx, ownerID, id); err != nil {
		return err
	}
	ok, err := au.repo.Rearm(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotTriggered
	}
	return nil
}

// DisableRule はルールを評価対象外にします。
func (au *AlertUsecase) DisableRule(ctx context.Context, ownerID, id string) error {
	return au.repo.SetStatus(ctx, ownerID, id, entity.StatusDisabled)
}

// ActiveSymbols はactiveなルールを持つシンボル集合を返します。
// リフレッシュループの追跡対象に合流します。
func (au *AlertUsecase) ActiveSymbols(ctx context.Context) ([]string, error) {
	return au.repo.ActiveSymbols(ctx)
}
