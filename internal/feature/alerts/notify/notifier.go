// Package notify はアラート発火イベントの配送を実装します。
package notify

import (
	"context"
	"log/slog"

	"finmonitor_backend/internal/feature/alerts/domain/entity"
)

// Notifier はルール発火時に1回だけ呼ばれる通知先です。
type Notifier interface {
	AlertTriggered(ctx context.Context, ev entity.Event)
}

// SlogNotifier は構造化ログへの通知実装です。外部のプッシュ配送が
// ない環境でのデフォルトです。
type SlogNotifier struct{}

func NewSlogNotifier() *SlogNotifier {
	return &SlogNotifier{}
}

func (n *SlogNotifier) AlertTriggered(ctx context.Context, ev entity.Event) {
	slog.InfoContext(ctx, "alert triggered",
		"rule_id", ev.RuleID,
		"owner_id", ev.OwnerID,
		"symbol", ev.Symbol,
		"condition", string(ev.Condition),
		"threshold", ev.Threshold,
		"price", ev.Price,
	)
}

// Fanout は複数のNotifierへ順に配送します。
type Fanout []Notifier

func (f Fanout) AlertTriggered(ctx context.Context, ev entity.Event) {
	for _, n := range f {
		n.AlertTriggered(ctx, ev)
	}
}
