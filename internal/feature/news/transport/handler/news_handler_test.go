package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"finmonitor_backend/internal/feature/news/domain/entity"
	"finmonitor_backend/internal/feature/news/transport/handler"
)

// mockNewsUsecase はNewsUsecaseインターフェースのモック実装です。
type mockNewsUsecase struct {
	ListFunc func(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error)
}

func (m *mockNewsUsecase) List(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error) {
	return m.ListFunc(ctx, symbol, limit)
}

// TestNewsHandler_List はクエリパラメータの受け渡しとレスポンス形を検証します。
func TestNewsHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	publishedAt := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	var gotSymbol string
	var gotLimit int
	mockUC := &mockNewsUsecase{
		ListFunc: func(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error) {
			gotSymbol = symbol
			gotLimit = limit
			return []entity.NewsItem{
				{
					ID:             "n-1",
					Title:          "Apple beats earnings",
					Source:         "Reuters",
					Sentiment:      entity.SentimentPositive,
					RelatedSymbols: []string{"AAPL"},
					PublishedAt:    publishedAt,
				},
			}, nil
		},
	}

	router := gin.New()
	router.GET("/news", handler.NewNewsHandler(mockUC).List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/news?symbol=AAPL&limit=5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AAPL", gotSymbol)
	assert.Equal(t, 5, gotLimit)
	assert.Contains(t, w.Body.String(), `"sentiment":"positive"`)
	assert.Contains(t, w.Body.String(), `"published_at":"2026-01-10T08:00:00Z"`)
}

// TestNewsHandler_List_BadLimit は数値でないlimitが400になることを検証します。
func TestNewsHandler_List_BadLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/news", handler.NewNewsHandler(&mockNewsUsecase{}).List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/news?limit=many", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"limit must be an integer"}`, w.Body.String())
}
