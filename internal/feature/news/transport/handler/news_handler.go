// Package handler はnewsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finmonitor_backend/internal/feature/news/domain/entity"
	"finmonitor_backend/internal/feature/news/transport/http/dto"
)

// NewsUsecase はニュース読み出しのユースケースインターフェースを定義します。
type NewsUsecase interface {
	List(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error)
}

// NewsHandler はニュースのHTTPリクエストを処理します。
type NewsHandler struct {
	uc NewsUsecase
}

// NewNewsHandler は指定されたusecaseでNewsHandlerの新しいインスタンスを生成します。
func NewNewsHandler(uc NewsUsecase) *NewsHandler {
	return &NewsHandler{uc: uc}
}

// List は GET /news?symbol=&limit= を処理します。
func (h *NewsHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be an integer"})
			return
		}
		limit = parsed
	}

	items, err := h.uc.List(c.Request.Context(), c.Query("symbol"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.NewsItemResponse, 0, len(items))
	for _, n := range items {
		out = append(out, dto.NewsItemResponse{
			ID:             n.ID,
			Title:          n.Title,
			Summary:        n.Summary,
			Source:         n.Source,
			URL:            n.URL,
			Sentiment:      string(n.Sentiment),
			RelatedSymbols: n.RelatedSymbols,
			PublishedAt:    n.PublishedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}
