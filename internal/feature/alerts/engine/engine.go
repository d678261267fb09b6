// Package engine はリフレッシュ済み株価に対するアラートルールの評価を実装します。
package engine

import (
	"context"
	"log/slog"
	"time"

	"finmonitor_backend/internal/feature/alerts/domain/entity"
	"finmonitor_backend/internal/feature/alerts/notify"
	qentity "finmonitor_backend/internal/feature/quotes/domain/entity"
)

// RuleStore は評価に必要なルール永続化の操作を抽象化します。
// Goの慣例に従い、インターフェースは利用者（engine）側で定義します。
type RuleStore interface {
	// BySymbol はシンボルに紐づく指定ステータスのルールを返します。
	BySymbol(ctx context.Context, symbol string, statuses ...entity.Status) ([]entity.AlertRule, error)
	// MarkTriggered はactive→triggeredの条件付き遷移を行い、
	// この呼び出しが遷移させた場合のみtrueを返します。
	MarkTriggered(ctx context.Context, id string, at time.Time) (bool, error)
	// Rearm はtriggered→activeの条件付き遷移を行います。
	Rearm(ctx context.Context, id string) (bool, error)
}

// Engine は株価リフレッシュのたびに該当シンボルのルールだけを評価します。
//
// 発火はデバウンスです。条件が満たされ続けても、ルールがactiveに戻らない
// 限り通知は1回だけです。exactly-onceの根拠はストア側の条件付き更新で、
// 並行評価でも勝者は高々1つです。
type Engine struct {
	rules    RuleStore
	notifier notify.Notifier
}

// NewEngine creates an alert engine delivering events to notifier.
func NewEngine(rules RuleStore, notifier notify.Notifier) *Engine {
	return &Engine{rules: rules, notifier: notifier}
}

// QuoteRefreshed evaluates every rule on the refreshed symbol.
// 永続化エラーはログに残して次のリフレッシュに委ねます。評価ループを
// 止めないためです。
func (e *Engine) QuoteRefreshed(ctx context.Context, q qentity.Quote) {
	rules, err := e.rules.BySymbol(ctx, q.Symbol, entity.StatusActive, entity.StatusTriggered)
	if err != nil {
		slog.ErrorContext(ctx, "alert evaluation skipped", "symbol", q.Symbol, "error", err)
		return
	}

	for _, rule := range rules {
		switch rule.Status {
		case entity.StatusActive:
			e.evaluateActive(ctx, rule, q)
		case entity.StatusTriggered:
			e.evaluateTriggered(ctx, rule, q)
		}
	}
}

func (e *Engine) evaluateActive(ctx context.Context, rule entity.AlertRule, q qentity.Quote) {
	if !rule.ConditionMet(q.Price) {
		return
	}

	now := time.Now().UTC()
	won, err := e.rules.MarkTriggered(ctx, rule.ID, now)
	if err != nil {
		slog.ErrorContext(ctx, "alert trigger not persisted", "rule_id", rule.ID, "error", err)
		return
	}
	if !won {
		// 並行する評価が先に発火させた
		return
	}

	e.notifier.AlertTriggered(ctx, entity.Event{
		RuleID:      rule.ID,
		OwnerID:     rule.OwnerID,
		Symbol:      rule.Symbol,
		Condition:   rule.Condition,
		Threshold:   rule.Threshold,
		Price:       q.Price,
		TriggeredAt: now,
	})
}

func (e *Engine) evaluateTriggered(ctx context.Context, rule entity.AlertRule, q qentity.Quote) {
	if !rule.RearmCrossed(q.Price) {
		return
	}

	ok, err := e.rules.Rearm(ctx, rule.ID)
	if err != nil {
		slog.ErrorContext(ctx, "alert rearm not persisted", "rule_id", rule.ID, "error", err)
		return
	}
	if ok {
		slog.InfoContext(ctx, "alert rule rearmed", "rule_id", rule.ID, "symbol", rule.Symbol, "price", q.Price)
	}
}
