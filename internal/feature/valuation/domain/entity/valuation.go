// Package entity defines the domain models for the valuation feature.
package entity

import "time"

// HoldingValuation は保有銘柄1件分の評価結果です。
// Stale は期限切れキャッシュの価格、Missing は取得価格（フォールバック）を
// 使ったことを示します。
type HoldingValuation struct {
	HoldingID        string
	Symbol           string
	Quantity         float64
	Price            float64 // 評価に使った価格（最新・期限切れ・フォールバックのいずれか）
	MarketValue      float64
	CostBasis        float64
	UnrealizedPnL    float64
	UnrealizedPnLPct float64
	Stale            bool
	Missing          bool
}

// Valuation はポートフォリオ全体の評価結果です。
// いずれかの保有銘柄が期限切れ・価格なしの場合でも合計は返し、
// Incomplete フラグで劣化を明示します。
type Valuation struct {
	PortfolioID      string
	MarketValue      float64
	CostBasis        float64
	UnrealizedPnL    float64
	UnrealizedPnLPct float64
	Incomplete       bool
	AsOf             time.Time
	Holdings         []HoldingValuation
}

// SnapshotPoint は評価額時系列の1点です。系列は追記専用で、
// タイムスタンプ順に単調増加します。
type SnapshotPoint struct {
	PortfolioID   string
	MarketValue   float64
	CostBasis     float64
	UnrealizedPnL float64
	Incomplete    bool
	TakenAt       time.Time
}
