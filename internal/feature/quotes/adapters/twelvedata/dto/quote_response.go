// Package dto defines the wire format of the Twelve Data /quote endpoint.
package dto

// QuoteResponse は /quote エンドポイントのレスポンスです。
// 数値フィールドは文字列で返ってくるため、アダプター側でパースします。
type QuoteResponse struct {
	Symbol        string `json:"symbol"`
	Close         string `json:"close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
	Volume        string `json:"volume"`
	MarketCap     string `json:"market_cap"`
	Timestamp     int64  `json:"timestamp"`

	// エラー時のみ設定される
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
