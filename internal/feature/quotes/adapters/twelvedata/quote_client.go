// Package twelvedata implements the upstream quote provider against the
// Twelve Data API.
package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"finmonitor_backend/internal/feature/quotes/adapters/twelvedata/dto"
	"finmonitor_backend/internal/feature/quotes/domain"
	"finmonitor_backend/internal/feature/quotes/domain/entity"
	"finmonitor_backend/internal/feature/quotes/fetch"
)

type QuoteClient struct {
	cfg    Config
	client *http.Client
}

// QuoteClientがQuoteProviderを実装していることをコンパイル時に検証します。
var _ fetch.QuoteProvider = (*QuoteClient)(nil)

func NewQuoteClient(cfg Config, client *http.Client) *QuoteClient {
	return &QuoteClient{cfg: cfg, client: client}
}

// FetchQuote は Twelve Data API から最新クオートを取得し、entity.Quote として返します。
func (t *QuoteClient) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	q := url.Values{}
	// クエリの追加
	q.Set("symbol", symbol)
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	// URLの生成
	u := fmt.Sprintf("%s/quote?%s", t.cfg.BaseURL, q.Encode())

	// リクエストオブジェクトの作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Quote{}, err
	}

	// リクエスト
	res, err := t.client.Do(req)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return entity.Quote{}, fmt.Errorf("%w: twelvedata http %d", domain.ErrUpstreamUnavailable, res.StatusCode)
	}

	// dto
	var body dto.QuoteResponse
	// JSONを構造体にデコード
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.Quote{}, err
	}
	if body.Status == "error" {
		return entity.Quote{}, fmt.Errorf("%w: twelvedata: %s", domain.ErrUpstreamUnavailable, body.Message)
	}

	// 現在値
	price, err := strconv.ParseFloat(body.Close, 64)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse close %q: %w", body.Close, err)
	}
	// 前日比
	change, err := strconv.ParseFloat(body.Change, 64)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse change %q: %w", body.Change, err)
	}
	// 前日比率
	percent, err := strconv.ParseFloat(body.PercentChange, 64)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse percent_change %q: %w", body.PercentChange, err)
	}
	// 出来高
	volume, err := strconv.ParseInt(body.Volume, 10, 64)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse volume %q: %w", body.Volume, err)
	}
	// 時価総額はプランによっては返らないため、欠けていても失敗にしない
	marketCap := 0.0
	if body.MarketCap != "" {
		marketCap, _ = strconv.ParseFloat(body.MarketCap, 64)
	}

	// domainに変換
	return entity.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: percent,
		Volume:        volume,
		MarketCap:     marketCap,
		AsOf:          time.Unix(body.Timestamp, 0).UTC(),
		FetchedAt:     time.Now(),
	}, nil
}
