// Package handler はquotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"finmonitor_backend/internal/feature/quotes/domain"
	"finmonitor_backend/internal/feature/quotes/domain/entity"
	"finmonitor_backend/internal/feature/quotes/transport/http/dto"
)

// QuotesUsecase はクオート読み取りのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuotesUsecase interface {
	GetQuote(ctx context.Context, symbol string) (entity.QuoteResult, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]entity.QuoteResult, map[string]error, error)
}

// QuoteHandler はクオートのHTTPリクエストを処理します。
type QuoteHandler struct {
	uc QuotesUsecase
}

// NewQuoteHandler は指定されたusecaseでQuoteHandlerの新しいインスタンスを生成します。
func NewQuoteHandler(uc QuotesUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// GetQuoteHandler は1銘柄のクオートをJSONで返します。
//
// エンドポイント例:
// GET /market/quotes/AAPL
func (h *QuoteHandler) GetQuoteHandler(c *gin.Context) {
	symbol := c.Param("symbol")

	res, err := h.uc.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSymbols):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "symbol is required"})
		case errors.Is(err, domain.ErrUpstreamUnavailable):
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(res))
}

// GetQuotesHandler はカンマ区切りの銘柄リストのクオートをまとめて返します。
// 銘柄単位の失敗はレスポンスのerrorsに分離され、200で返ります。
//
// エンドポイント例:
// GET /market/quotes?symbols=AAPL,MSFT,GOOGL
func (h *QuoteHandler) GetQuotesHandler(c *gin.Context) {
	symbols := strings.Split(c.Query("symbols"), ",")

	results, symErrs, err := h.uc.GetQuotes(c.Request.Context(), symbols)
	if err != nil {
		if errors.Is(err, domain.ErrNoSymbols) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "symbols query parameter is required"})
			return
		}
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := dto.BatchQuoteResponse{Quotes: make([]dto.QuoteResponse, 0, len(results))}
	for _, res := range results {
		out.Quotes = append(out.Quotes, toQuoteResponse(res))
	}
	// レスポンスの順序を安定させる
	sort.Slice(out.Quotes, func(i, j int) bool { return out.Quotes[i].Symbol < out.Quotes[j].Symbol })

	if len(symErrs) > 0 {
		out.Errors = make(map[string]string, len(symErrs))
		for sym, e := range symErrs {
			out.Errors[sym] = e.Error()
		}
	}

	c.JSON(http.StatusOK, out)
}

func toQuoteResponse(res entity.QuoteResult) dto.QuoteResponse {
	return dto.QuoteResponse{
		Symbol:        res.Quote.Symbol,
		Price:         res.Quote.Price,
		Change:        res.Quote.Change,
		ChangePercent: res.Quote.ChangePercent,
		Volume:        res.Quote.Volume,
		MarketCap:     res.Quote.MarketCap,
		AsOf:          res.Quote.AsOf.UTC().Format(time.RFC3339),
		FetchedAt:     res.Quote.FetchedAt.UTC().Format(time.RFC3339),
		Stale:         res.Stale,
	}
}
