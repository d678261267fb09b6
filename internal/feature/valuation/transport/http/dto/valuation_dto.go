// Package dto defines the HTTP response shapes for the valuation feature.
package dto

// HoldingValuationResponse は保有銘柄1件分の評価です。
type HoldingValuationResponse struct {
	HoldingID        string  `json:"holding_id"`
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	Price            float64 `json:"price"`
	MarketValue      float64 `json:"market_value"`
	CostBasis        float64 `json:"cost_basis"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`
	Stale            bool    `json:"stale,omitempty"`
	Missing          bool    `json:"missing,omitempty"`
}

// ValuationResponse はポートフォリオ全体の評価です。
type ValuationResponse struct {
	PortfolioID      string                     `json:"portfolio_id"`
	MarketValue      float64                    `json:"market_value"`
	CostBasis        float64                    `json:"cost_basis"`
	UnrealizedPnL    float64                    `json:"unrealized_pnl"`
	UnrealizedPnLPct float64                    `json:"unrealized_pnl_pct"`
	Incomplete       bool                       `json:"incomplete"`
	AsOf             string                     `json:"as_of"`
	Holdings         []HoldingValuationResponse `json:"holdings"`
}

// SnapshotResponse は評価額時系列の1点です。
type SnapshotResponse struct {
	TakenAt       string  `json:"taken_at"`
	MarketValue   float64 `json:"market_value"`
	CostBasis     float64 `json:"cost_basis"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	Incomplete    bool    `json:"incomplete,omitempty"`
}

// ErrorResponse is the common error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
