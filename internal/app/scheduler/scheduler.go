// Package scheduler はリフレッシュとスナップショットの定期ジョブを実装します。
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultRefreshInterval はリフレッシュループの既定周期です。
	DefaultRefreshInterval = 30 * time.Second
	// DefaultSnapshotInterval はスナップショットループの既定周期です。
	DefaultSnapshotInterval = 15 * time.Minute
	// maxBackoff は失敗時に伸びる周期の上限です。
	maxBackoff = 5 * time.Minute
)

// HoldingSymbolLister は保有銘柄のシンボル集合を提供します。
// Goの慣例に従い、インターフェースは利用者（scheduler）側で定義します。
type HoldingSymbolLister interface {
	DistinctSymbols(ctx context.Context) ([]string, error)
}

// AlertSymbolLister はactiveなアラートのシンボル集合を提供します。
type AlertSymbolLister interface {
	ActiveSymbols(ctx context.Context) ([]string, error)
}

// Refresher はシンボル集合の株価リフレッシュを実行します。
type Refresher interface {
	RefreshBatch(ctx context.Context, symbols []string) map[string]error
}

// Evictor は株価ストアの期限切れエントリを落とします。
type Evictor interface {
	Evict() int
}

// RefreshLoop は固定周期で追跡対象シンボルの株価を更新し続けます。
// 追跡対象は保有銘柄とactiveなアラートのシンボルの和集合です。
//
// 永続化層からの集合取得に失敗したサイクルはスキップし、周期を倍に
// 伸ばして再試行します。成功すれば周期は既定値へ戻ります。クラッシュは
// しません。
type RefreshLoop struct {
	holdings  HoldingSymbolLister
	alerts    AlertSymbolLister
	refresher Refresher
	store     Evictor
	interval  time.Duration
}

// NewRefreshLoop はRefreshLoopを生成します。非正のintervalは既定値になります。
func NewRefreshLoop(holdings HoldingSymbolLister, alerts AlertSymbolLister, refresher Refresher, store Evictor, interval time.Duration) *RefreshLoop {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshLoop{
		holdings:  holdings,
		alerts:    alerts,
		refresher: refresher,
		store:     store,
		interval:  interval,
	}
}

// Run はctxがキャンセルされるまでループを回します。
func (l *RefreshLoop) Run(ctx context.Context) {
	delay := l.interval
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := l.RunCycle(ctx); err != nil {
			delay = min(delay*2, maxBackoff)
			slog.ErrorContext(ctx, "refresh cycle skipped", "error", err, "next_attempt_in", delay)
		} else {
			delay = l.interval
		}
		timer.Reset(delay)
	}
}

// RunCycle は1サイクル分のリフレッシュを実行します。
// 追跡集合の取得失敗はサイクル全体の失敗、個別シンボルの失敗はログ止まりです。
func (l *RefreshLoop) RunCycle(ctx context.Context) error {
	symbols, err := l.trackedSymbols(ctx)
	if err != nil {
		return err
	}
	if len(symbols) > 0 {
		for sym, err := range l.refresher.RefreshBatch(ctx, symbols) {
			slog.WarnContext(ctx, "symbol refresh failed", "symbol", sym, "error", err)
		}
	}
	if removed := l.store.Evict(); removed > 0 {
		slog.InfoContext(ctx, "evicted stale quotes", "count", removed)
	}
	return nil
}

func (l *RefreshLoop) trackedSymbols(ctx context.Context) ([]string, error) {
	held, err := l.holdings.DistinctSymbols(ctx)
	if err != nil {
		return nil, err
	}
	watched, err := l.alerts.ActiveSymbols(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(held)+len(watched))
	out := make([]string, 0, len(held)+len(watched))
	for _, s := range append(held, watched...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// PortfolioLister はスナップショット対象のポートフォリオIDを列挙します。
type PortfolioLister interface {
	ListAllIDs(ctx context.Context) ([]string, error)
}

// Snapshotter は評価額のサンプリングと保持期間の掃除を行います。
type Snapshotter interface {
	SnapshotPortfolio(ctx context.Context, portfolioID string) error
	PruneSnapshots(ctx context.Context, retention time.Duration) (int64, error)
}

// SnapshotLoop は固定周期で全ポートフォリオの評価額を系列へ追記します。
type SnapshotLoop struct {
	portfolios PortfolioLister
	snapshots  Snapshotter
	interval   time.Duration
	retention  time.Duration
}

// NewSnapshotLoop はSnapshotLoopを生成します。非正の値は既定値になります。
func NewSnapshotLoop(portfolios PortfolioLister, snapshots Snapshotter, interval, retention time.Duration) *SnapshotLoop {
	if interval <= 0 {
		interval = DefaultSnapshotInterval
	}
	return &SnapshotLoop{
		portfolios: portfolios,
		snapshots:  snapshots,
		interval:   interval,
		retention:  retention,
	}
}

// Run はctxがキャンセルされるまでループを回します。
func (l *SnapshotLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.RunCycle(ctx)
		}
	}
}

// RunCycle は1サイクル分のスナップショットを実行します。
// 1ポートフォリオの失敗は他のポートフォリオを止めません。
func (l *SnapshotLoop) RunCycle(ctx context.Context) {
	ids, err := l.portfolios.ListAllIDs(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "snapshot cycle skipped", "error", err)
		return
	}

	for _, id := range ids {
		if err := l.snapshots.SnapshotPortfolio(ctx, id); err != nil {
			slog.ErrorContext(ctx, "portfolio snapshot failed", "portfolio_id", id, "error", err)
		}
	}

	if removed, err := l.snapshots.PruneSnapshots(ctx, l.retention); err != nil {
		slog.ErrorContext(ctx, "snapshot prune failed", "error", err)
	} else if removed > 0 {
		slog.InfoContext(ctx, "pruned snapshot points", "count", removed)
	}
}
