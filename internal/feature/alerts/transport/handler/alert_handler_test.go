package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"finmonitor_backend/internal/feature/alerts/domain"
	"finmonitor_backend/internal/feature/alerts/domain/entity"
	"finmonitor_backend/internal/feature/alerts/transport/handler"
	jwtmw "finmonitor_backend/internal/platform/jwt"
)

// mockAlertUsecase はAlertUsecaseインターフェースのモック実装です。
type mockAlertUsecase struct {
	CreateRuleFunc  func(ctx context.Context, ownerID, symbol string, condition entity.Condition, threshold float64, rearm bool, rearmMargin float64) (entity.AlertRule, error)
	ListRulesFunc   func(ctx context.Context, ownerID string) ([]entity.AlertRule, error)
	DeleteRuleFunc  func(ctx context.Context, ownerID, id string) error
	ResetRuleFunc   func(ctx context.Context, ownerID, id string) error
	DisableRuleFunc func(ctx context.Context, ownerID, id string) error
}

func (m *mockAlertUsecase) CreateRule(ctx context.Context, ownerID, symbol string, condition entity.Condition, threshold float64, rearm bool, rearmMargin float64) (entity.AlertRule, error) {
	return m.CreateRuleFunc(ctx, ownerID, symbol, condition, threshold, rearm, rearmMargin)
}
func (m *mockAlertUsecase) ListRules(ctx context.Context, ownerID string) ([]entity.AlertRule, error) {
	return m.ListRulesFunc(ctx, ownerID)
}
func (m *mockAlertUsecase) DeleteRule(ctx context.Context, ownerID, id string) error {
	return m.DeleteRuleFunc(ctx, ownerID, id)
}
func (m *mockAlertUsecase) ResetRule(ctx context.Context, ownerID, id string) error {
	return m.ResetRuleFunc(ctx, ownerID, id)
}
func (m *mockAlertUsecase) DisableRule(ctx context.Context, ownerID, id string) error {
	return m.DisableRuleFunc(ctx, ownerID, id)
}

func newRouter(h *handler.AlertHandler) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextOwnerID, "owner-1")
	})
	router.POST("/alerts", h.Create)
	router.GET("/alerts", h.List)
	router.DELETE("/alerts/:id", h.Delete)
	router.POST("/alerts/:id/reset", h.Reset)
	return router
}

// TestAlertHandler_Create は作成の成否とステータスマッピングを検証します。
func TestAlertHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	createdAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		mockErr        error
		expectedStatus int
	}{
		{
			name:           "success",
			body:           `{"symbol":"AAPL","condition":"above","threshold":150}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error: duplicate active rule",
			body:           `{"symbol":"AAPL","condition":"above","threshold":150}`,
			mockErr:        domain.ErrDuplicateRule,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "error: invalid condition",
			body:           `{"symbol":"AAPL","condition":"crosses","threshold":150}`,
			mockErr:        domain.ErrInvalidCondition,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error: missing body fields",
			body:           `{"symbol":"AAPL"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAlertUsecase{
				CreateRuleFunc: func(ctx context.Context, ownerID, symbol string, condition entity.Condition, threshold float64, rearm bool, rearmMargin float64) (entity.AlertRule, error) {
					if tt.mockErr != nil {
						return entity.AlertRule{}, tt.mockErr
					}
					assert.Equal(t, "owner-1", ownerID)
					return entity.AlertRule{
						ID: "r-1", OwnerID: ownerID, Symbol: symbol,
						Condition: condition, Threshold: threshold,
						Status: entity.StatusActive, CreatedAt: createdAt,
					}, nil
				},
			}
			router := newRouter(handler.NewAlertHandler(mockUC))

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/alerts", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				assert.Contains(t, w.Body.String(), `"status":"active"`)
				assert.Contains(t, w.Body.String(), `"created_at":"2026-02-01T10:00:00Z"`)
			}
		})
	}
}

// TestAlertHandler_Reset はリセットのステータスマッピングを検証します。
func TestAlertHandler_Reset(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		mockErr        error
		expectedStatus int
	}{
		{"success", nil, http.StatusNoContent},
		{"error: not triggered", domain.ErrNotTriggered, http.StatusBadRequest},
		{"error: not found", domain.ErrRuleNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAlertUsecase{
				ResetRuleFunc: func(ctx context.Context, ownerID, id string) error {
					return tt.mockErr
				},
			}
			router := newRouter(handler.NewAlertHandler(mockUC))

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/alerts/r-1/reset", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

// TestAlertHandler_List は一覧レスポンスの形を検証します。
func TestAlertHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	triggeredAt := time.Date(2026, 2, 2, 15, 30, 0, 0, time.UTC)
	mockUC := &mockAlertUsecase{
		ListRulesFunc: func(ctx context.Context, ownerID string) ([]entity.AlertRule, error) {
			return []entity.AlertRule{
				{
					ID: "r-1", OwnerID: ownerID, Symbol: "AAPL",
					Condition: entity.ConditionAbove, Threshold: 150,
					Status:          entity.StatusTriggered,
					CreatedAt:       triggeredAt.Add(-24 * time.Hour),
					LastTriggeredAt: triggeredAt,
				},
			}, nil
		},
	}
	router := newRouter(handler.NewAlertHandler(mockUC))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/alerts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"triggered"`)
	assert.Contains(t, w.Body.String(), `"last_triggered_at":"2026-02-02T15:30:00Z"`)
}
