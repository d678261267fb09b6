// Package dto defines the HTTP request/response shapes for the alerts feature.
package dto

// CreateAlertRequest はアラートルール作成リクエストです。
type CreateAlertRequest struct {
	Symbol      string  `json:"symbol" binding:"required"`
	Condition   string  `json:"condition" binding:"required"`
	Threshold   float64 `json:"threshold" binding:"required"`
	Rearm       bool    `json:"rearm"`
	RearmMargin float64 `json:"rearm_margin"`
}

// AlertResponse はクライアントへ返すアラートルールです。
type AlertResponse struct {
	ID              string  `json:"id"`
	Symbol          string  `json:"symbol"`
	Condition       string  `json:"condition"`
	Threshold       float64 `json:"threshold"`
	Status          string  `json:"status"`
	Rearm           bool    `json:"rearm"`
	RearmMargin     float64 `json:"rearm_margin,omitempty"`
	CreatedAt       string  `json:"created_at"`
	LastTriggeredAt string  `json:"last_triggered_at,omitempty"`
}

// ErrorResponse is the common error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
