// Package handler はvaluationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finmonitor_backend/internal/feature/portfolio/domain"
	"finmonitor_backend/internal/feature/valuation/domain/entity"
	"finmonitor_backend/internal/feature/valuation/transport/http/dto"
	jwtmw "finmonitor_backend/internal/platform/jwt"
)

// ValuationUsecase は評価額計算のユースケースインターフェースを定義します。
type ValuationUsecase interface {
	Compute(ctx context.Context, ownerID, portfolioID string) (entity.Valuation, error)
	History(ctx context.Context, ownerID, portfolioID string, days int) ([]entity.SnapshotPoint, error)
}

// ValuationHandler は評価額のHTTPリクエストを処理します。
type ValuationHandler struct {
	uc ValuationUsecase
}

// NewValuationHandler は指定されたusecaseでValuationHandlerの新しいインスタンスを生成します。
func NewValuationHandler(uc ValuationUsecase) *ValuationHandler {
	return &ValuationHandler{uc: uc}
}

// Get は GET /portfolios/:id/valuation を処理します。
func (h *ValuationHandler) Get(c *gin.Context) {
	v, err := h.uc.Compute(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id"))
	if err != nil {
		writeValuationError(c, err)
		return
	}

	out := dto.ValuationResponse{
		PortfolioID:      v.PortfolioID,
		MarketValue:      v.MarketValue,
		CostBasis:        v.CostBasis,
		UnrealizedPnL:    v.UnrealizedPnL,
		UnrealizedPnLPct: v.UnrealizedPnLPct,
		Incomplete:       v.Incomplete,
		AsOf:             v.AsOf.UTC().Format(time.RFC3339),
		Holdings:         make([]dto.HoldingValuationResponse, 0, len(v.Holdings)),
	}
	for _, hv := range v.Holdings {
		out.Holdings = append(out.Holdings, dto.HoldingValuationResponse{
			HoldingID:        hv.HoldingID,
			Symbol:           hv.Symbol,
			Quantity:         hv.Quantity,
			Price:            hv.Price,
			MarketValue:      hv.MarketValue,
			CostBasis:        hv.CostBasis,
			UnrealizedPnL:    hv.UnrealizedPnL,
			UnrealizedPnLPct: hv.UnrealizedPnLPct,
			Stale:            hv.Stale,
			Missing:          hv.Missing,
		})
	}
	c.JSON(http.StatusOK, out)
}

// History は GET /portfolios/:id/history?days= を処理します。
func (h *ValuationHandler) History(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "days must be an integer"})
			return
		}
		days = parsed
	}

	points, err := h.uc.History(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id"), days)
	if err != nil {
		writeValuationError(c, err)
		return
	}

	out := make([]dto.SnapshotResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dto.SnapshotResponse{
			TakenAt:       p.TakenAt.UTC().Format(time.RFC3339),
			MarketValue:   p.MarketValue,
			CostBasis:     p.CostBasis,
			UnrealizedPnL: p.UnrealizedPnL,
			Incomplete:    p.Incomplete,
		})
	}
	c.JSON(http.StatusOK, out)
}

func writeValuationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}
