// Package dto defines the HTTP response shapes for the quotes feature.
package dto

// QuoteResponse はクライアントへ返すクオートです。
type QuoteResponse struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	MarketCap     float64 `json:"market_cap,omitempty"`
	AsOf          string  `json:"as_of"`
	FetchedAt     string  `json:"fetched_at"`
	Stale         bool    `json:"stale"`
}

// BatchQuoteResponse は複数銘柄リクエストのレスポンスです。
// 取得できなかった銘柄はerrorsに分離され、バッチ全体は失敗しません。
type BatchQuoteResponse struct {
	Quotes []QuoteResponse   `json:"quotes"`
	Errors map[string]string `json:"errors,omitempty"`
}

// ErrorResponse is the common error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
