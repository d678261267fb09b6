package twelvedata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finmonitor_backend/internal/feature/quotes/domain"
)

// newTestClient はhttptestサーバーに向けたQuoteClientを生成します。
func newTestClient(t *testing.T, handler http.HandlerFunc) *QuoteClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := Config{
		TwelveDataAPIKey: "test-key",
		BaseURL:          srv.URL,
		Timeout:          time.Second,
	}
	return NewQuoteClient(cfg, srv.Client())
}

// TestQuoteClient_FetchQuote_Success は正常レスポンスがentity.Quoteに変換されることを検証します。
func TestQuoteClient_FetchQuote_Success(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("expected symbol query AAPL, got %q", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("expected apikey query, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "AAPL",
			"close": "175.50",
			"change": "2.30",
			"percent_change": "1.32",
			"volume": "65432100",
			"market_cap": "2850000000000",
			"timestamp": 1700000000
		}`))
	})

	q, err := client.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.Symbol != "AAPL" || q.Price != 175.50 || q.Change != 2.30 || q.ChangePercent != 1.32 {
		t.Errorf("unexpected quote: %+v", q)
	}
	if q.Volume != 65432100 {
		t.Errorf("expected volume 65432100, got %d", q.Volume)
	}
	if q.MarketCap != 2850000000000 {
		t.Errorf("expected market cap, got %v", q.MarketCap)
	}
	if q.AsOf != time.Unix(1700000000, 0).UTC() {
		t.Errorf("unexpected as_of: %v", q.AsOf)
	}
	if q.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

// TestQuoteClient_FetchQuote_HTTPError はHTTPエラーがErrUpstreamUnavailableに
// マップされることを検証します。
func TestQuoteClient_FetchQuote_HTTPError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchQuote(context.Background(), "AAPL")

	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

// TestQuoteClient_FetchQuote_APIError はペイロード内のエラーステータスが
// ErrUpstreamUnavailableにマップされることを検証します。
func TestQuoteClient_FetchQuote_APIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"error","code":429,"message":"API credits exhausted"}`))
	})

	_, err := client.FetchQuote(context.Background(), "UNKNOWN")

	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

// TestQuoteClient_FetchQuote_MissingMarketCap は時価総額が欠けていても
// 失敗しないことを検証します。
func TestQuoteClient_FetchQuote_MissingMarketCap(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "GOOGL",
			"close": "142.75",
			"change": "0.85",
			"percent_change": "0.60",
			"volume": "18754200",
			"timestamp": 1700000000
		}`))
	})

	q, err := client.FetchQuote(context.Background(), "GOOGL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.MarketCap != 0 {
		t.Errorf("expected zero market cap, got %v", q.MarketCap)
	}
}
