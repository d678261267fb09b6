// Package handler はportfolioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finmonitor_backend/internal/feature/portfolio/domain"
	"finmonitor_backend/internal/feature/portfolio/domain/entity"
	"finmonitor_backend/internal/feature/portfolio/transport/http/dto"
	jwtmw "finmonitor_backend/internal/platform/jwt"
)

// PortfolioUsecase はポートフォリオ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PortfolioUsecase interface {
	CreatePortfolio(ctx context.Context, ownerID, name, description string) (entity.Portfolio, error)
	ListPortfolios(ctx context.Context, ownerID string) ([]entity.Portfolio, error)
	GetPortfolio(ctx context.Context, ownerID, id string) (entity.Portfolio, error)
	UpdatePortfolio(ctx context.Context, ownerID, id, name, description string) (entity.Portfolio, error)
	DeletePortfolio(ctx context.Context, ownerID, id string) error
	AddHolding(ctx context.Context, ownerID, portfolioID, symbol string, quantity, purchasePrice float64, purchaseDate time.Time) (entity.Holding, error)
	ListHoldings(ctx context.Context, ownerID, portfolioID string) ([]entity.Holding, error)
	RemoveHolding(ctx context.Context, ownerID, portfolioID, holdingID string) error
}

// PortfolioHandler はポートフォリオのHTTPリクエストを処理します。
type PortfolioHandler struct {
	uc PortfolioUsecase
}

// NewPortfolioHandler は指定されたusecaseでPortfolioHandlerの新しいインスタンスを生成します。
func NewPortfolioHandler(uc PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc}
}

// Create は POST /portfolios を処理します。
func (h *PortfolioHandler) Create(c *gin.Context) {
	var req dto.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.uc.CreatePortfolio(c.Request.Context(), jwtmw.OwnerID(c), req.Name, req.Description)
	if err != nil {
		writePortfolioError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPortfolioResponse(p))
}

// List は GET /portfolios を処理します。
func (h *PortfolioHandler) List(c *gin.Context) {
	ps, err := h.uc.ListPortfolios(c.Request.Context(), jwtmw.OwnerID(c))
	if err != nil {
		writePortfolioError(c, err)
		return
	}

	out := make([]dto.PortfolioResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPortfolioResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// Get は GET /portfolios/:id を処理します。
func (h *PortfolioHandler) Get(c *gin.Context) {
	p, err := h.uc.GetPortfolio(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id"))
	if err != nil {
		writePortfolioError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPortfolioResponse(p))
}

// Update は PUT /portfolios/:id を処理します。
func (h *PortfolioHandler) Update(c *gin.Context) {
	var req dto.UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.uc.UpdatePortfolio(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id"), req.Name, req.Description)
	if err != nil {
		writePortfolioError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPortfolioResponse(p))
}

// Delete は DELETE /portfolios/:id を処理します。
// 配下の保有銘柄もまとめて削除されます。
func (h *PortfolioHandler) Delete(c *gin.Context) {
	if err := h.uc.DeletePortfolio(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id")); err != nil {
		writePortfolioError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddHolding は POST /portfolios/:id/holdings を処理します。
func (h *PortfolioHandler) AddHolding(c *gin.Context) {
	var req dto.AddHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	var purchaseDate time.Time
	if req.PurchaseDate != "" {
		var err error
		purchaseDate, err = time.Parse(time.RFC3339, req.PurchaseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "purchase_date must be RFC3339"})
			return
		}
	}

	holding, err := h.uc.AddHolding(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id"),
		req.Symbol, req.Quantity, req.PurchasePrice, purchaseDate)
	if err != nil {
		writePortfolioError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toHoldingResponse(holding))
}

// ListHoldings は GET /portfolios/:id/holdings を処理します。
func (h *PortfolioHandler) ListHoldings(c *gin.Context) {
	hs, err := h.uc.ListHoldings(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id"))
	if err != nil {
		writePortfolioError(c, err)
		return
	}

	out := make([]dto.HoldingResponse, 0, len(hs))
	for _, holding := range hs {
		out = append(out, toHoldingResponse(holding))
	}
	c.JSON(http.StatusOK, out)
}

// RemoveHolding は DELETE /portfolios/:id/holdings/:hid を処理します。
func (h *PortfolioHandler) RemoveHolding(c *gin.Context) {
	err := h.uc.RemoveHolding(c.Request.Context(), jwtmw.OwnerID(c), c.Param("id"), c.Param("hid"))
	if err != nil {
		writePortfolioError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writePortfolioError はドメインエラーをHTTPステータスへマップします。
func writePortfolioError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound), errors.Is(err, domain.ErrHoldingNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrSymbolRequired),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPurchasePrice):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

func toPortfolioResponse(p entity.Portfolio) dto.PortfolioResponse {
	return dto.PortfolioResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toHoldingResponse(h entity.Holding) dto.HoldingResponse {
	return dto.HoldingResponse{
		ID:            h.ID,
		PortfolioID:   h.PortfolioID,
		Symbol:        h.Symbol,
		Quantity:      h.Quantity,
		PurchasePrice: h.PurchasePrice,
		PurchaseDate:  h.PurchaseDate.UTC().Format(time.RFC3339),
	}
}
