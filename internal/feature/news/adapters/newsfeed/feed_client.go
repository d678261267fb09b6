// Package newsfeed implements the upstream news source for the ingest job.
package newsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"finmonitor_backend/internal/feature/news/adapters/newsfeed/dto"
	"finmonitor_backend/internal/feature/news/usecase"
)

type FeedClient struct {
	cfg    Config
	client *http.Client
}

func NewFeedClient(cfg Config, client *http.Client) *FeedClient {
	return &FeedClient{cfg: cfg, client: client}
}

// FetchLatest は最新のニュース記事を取り込み形式で返します。
// published_atを解釈できない記事はスキップしてログに残します。
func (f *FeedClient) FetchLatest(ctx context.Context, limit int) ([]usecase.RawItem, error) {
	q := url.Values{}
	q.Set("api_token", f.cfg.APIKey)
	q.Set("language", "en")
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}

	u := fmt.Sprintf("%s/v1/news/all?%s", f.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("news feed http %d", res.StatusCode)
	}

	var body dto.FeedResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode news feed: %w", err)
	}

	out := make([]usecase.RawItem, 0, len(body.Data))
	for _, item := range body.Data {
		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			slog.WarnContext(ctx, "skipping article with bad timestamp", "title", item.Title, "published_at", item.PublishedAt)
			continue
		}
		out = append(out, usecase.RawItem{
			Title:       item.Title,
			Summary:     item.Description,
			Source:      item.Source,
			URL:         item.URL,
			PublishedAt: publishedAt,
		})
	}
	return out, nil
}
