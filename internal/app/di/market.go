// Package di provides dependency injection factories for creating application components.
package di

import (
	"finmonitor_backend/internal/feature/quotes/adapters/twelvedata"
	infrahttp "finmonitor_backend/internal/platform/http"
)

// NewQuoteProvider creates a fully configured Twelve Data quote client with HTTP client.
func NewQuoteProvider() *twelvedata.QuoteClient {
	cfg := twelvedata.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return twelvedata.NewQuoteClient(cfg, httpClient)
}
