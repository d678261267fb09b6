// Package handler はalertsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finmonitor_backend/internal/feature/alerts/domain"
	"finmonitor_backend/internal/feature/alerts/domain/entity"
	"finmonitor_backend/internal/feature/alerts/transport/http/dto"
	jwtmw "finmonitor_backend/internal/platform/jwt"
)

// AlertUsecase はアラートルール操作のユースケースインターフェースを定義します。
type AlertUsecase interface {
	CreateRule(ctx context.Context, ownerID, symbol string, condition entity.Condition, threshold float64, rearm bool, rearmMargin float64) (entity.AlertRule, error)
	ListRules(ctx context.Context, ownerID string) ([]entity.AlertRule, error)
	DeleteRule(ctx context.Context, ownerID, id string) error
	ResetRule(ctx context.Context, ownerID, id string) error
	DisableRule(ctx context.Context, ownerID, id string) error
}

// AlertHandler はアラートルールのHTTPリクエストを処理します。
type AlertHandler struct {
	uc AlertUsecase
}

// NewAlertHandler は指定されたusecaseでAlertHandlerの新しいインスタンスを生成します。
func NewAlertHandler(uc AlertUsecase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

// Create は POST /alerts を処理します。
func (h *AlertHandler) Create(c *gin.Context) {
	var req dto.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	rule, err := h.uc.CreateRule(c.Request.Context(), jwtmw.OwnerID(c),
		req.Symbol, entity.Condition(req.Condition), req.Threshold, req.Rearm, req.RearmMargin)
	if err != nil {
		writeAlertError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAlertResponse(rule))
}

// List は GET /alerts を処理します。
func (h *AlertHandler) List(c *gin.Context) {
	rules, err := h.uc.ListRules(c.Request.Context(), jwtmw.OwnerID(c))
	if err != nil {
		writeAlertError(c, err)
		return
	}

	out := make([]dto.AlertResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, toAlertResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

// Delete は DELETE /alerts/:id を処理します。
func (h *AlertHandler) Delete(c *gin.Context) {
	if err := h.uc.DeleteRule(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id")); err != nil {
		writeAlertError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reset は POST /alerts/:id/reset を処理します。
func (h *AlertHandler) Reset(c *gin.Context) {
	if err := h.uc.ResetRule(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id")); err != nil {
		writeAlertError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Disable は POST /alerts/:id/disable を処理します。
func (h *AlertHandler) Disable(c *gin.Context) {
	if err := h.uc.DisableRule(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id")); err != nil {
		writeAlertError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeAlertError はドメインエラーをHTTPステータスへマップします。
func writeAlertError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRuleNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrDuplicateRule):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSymbolRequired),
		errors.Is(err, domain.ErrInvalidCondition),
		errors.Is(err, domain.ErrInvalidThreshold),
		errors.Is(err, domain.ErrNotTriggered):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

func toAlertResponse(r entity.AlertRule) dto.AlertResponse {
	out := dto.AlertResponse{
		ID:          r.ID,
		Symbol:      r.Symbol,
		Condition:   string(r.Condition),
		Threshold:   r.Threshold,
		Status:      string(r.Status),
		Rearm:       r.Rearm,
		RearmMargin: r.RearmMargin,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !r.LastTriggeredAt.IsZero() {
		out.LastTriggeredAt = r.LastTriggeredAt.UTC().Format(time.RFC3339)
	}
	return out
}
