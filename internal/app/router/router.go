// Package router はAPIのルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	alerthandler "finmonitor_backend/internal/feature/alerts/transport/handler"
	"finmonitor_backend/internal/feature/alerts/notify"
	newshandler "finmonitor_backend/internal/feature/news/transport/handler"
	portfoliohandler "finmonitor_backend/internal/feature/portfolio/transport/handler"
	quotehandler "finmonitor_backend/internal/feature/quotes/transport/handler"
	valuationhandler "finmonitor_backend/internal/feature/valuation/transport/handler"
	"finmonitor_backend/internal/platform/http/handler"
	jwtmw "finmonitor_backend/internal/platform/jwt"
)

func NewRouter(
	quotes *quotehandler.QuoteHandler,
	portfolios *portfoliohandler.PortfolioHandler,
	valuations *valuationhandler.ValuationHandler,
	alerts *alerthandler.AlertHandler,
	news *newshandler.NewsHandler,
	hub *notify.Hub,
) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.GET("/market/quotes", quotes.GetQuotesHandler)
		auth.GET("/market/quotes/:symbol", quotes.GetQuoteHandler)

		auth.POST("/portfolios", portfolios.Create)
		auth.GET("/portfolios", portfolios.List)
		auth.GET("/portfolios/:id", portfolios.Get)
		auth.PUT("/portfolios/:id", portfolios.Update)
		auth.DELETE("/portfolios/:id", portfolios.Delete)
		auth.POST("/portfolios/:id/holdings", portfolios.AddHolding)
		auth.GET("/portfolios/:id/holdings", portfolios.ListHoldings)
		auth.DELETE("/portfolios/:id/holdings/:hid", portfolios.RemoveHolding)

		auth.GET("/portfolios/:id/valuation", valuations.Get)
		auth.GET("/portfolios/:id/history", valuations.History)

		auth.POST("/alerts", alerts.Create)
		auth.GET("/alerts", alerts.List)
		auth.DELETE("/alerts/:id", alerts.Delete)
		auth.POST("/alerts/:id/reset", alerts.Reset)
		auth.POST("/alerts/:id/disable", alerts.Disable)

		auth.GET("/news", news.List)

		// 発火イベントのプッシュ配送
		auth.GET("/ws/alerts", hub.Handler)
	}

	return r
}
