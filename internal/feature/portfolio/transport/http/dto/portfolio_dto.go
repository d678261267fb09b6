// Package dto defines the HTTP request/response shapes for the portfolio feature.
package dto

// CreatePortfolioRequest はポートフォリオ作成リクエストです。
type CreatePortfolioRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdatePortfolioRequest はポートフォリオ更新リクエストです。
type UpdatePortfolioRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// PortfolioResponse はクライアントへ返すポートフォリオです。
type PortfolioResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// AddHoldingRequest は保有銘柄追加リクエストです。
type AddHoldingRequest struct {
	Symbol        string  `json:"symbol" binding:"required"`
	Quantity      float64 `json:"quantity" binding:"required"`
	PurchasePrice float64 `json:"purchase_price"`
	PurchaseDate  string  `json:"purchase_date"` // RFC3339、省略時は現在時刻
}

// HoldingResponse はクライアントへ返す保有銘柄です。
type HoldingResponse struct {
	ID            string  `json:"id"`
	PortfolioID   string  `json:"portfolio_id"`
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	PurchaseDate  string  `json:"purchase_date"`
}

// ErrorResponse is the common error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
