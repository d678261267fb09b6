package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"finmonitor_backend/internal/feature/news/adapters/gemini"
	"finmonitor_backend/internal/feature/news/adapters/newsfeed"
	"finmonitor_backend/internal/feature/news/domain/entity"
	"finmonitor_backend/internal/feature/news/usecase"
	"finmonitor_backend/internal/platform/cache"
	infrahttp "finmonitor_backend/internal/platform/http"
)

// NewNewsFeed creates a fully configured news feed client with HTTP client.
func NewNewsFeed() *newsfeed.FeedClient {
	cfg := newsfeed.LoadConfig()
	return newsfeed.NewFeedClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
}

// NewSentimentClassifier creates the Gemini classifier, or a neutral fallback
// when the Gemini client cannot be configured.
// 分類器なしでも取り込みは動き続けます（全件neutral）。
func NewSentimentClassifier(ctx context.Context) usecase.SentimentClassifier {
	classifier, err := gemini.NewGeminiClassifier(ctx)
	if err != nil {
		slog.Warn("gemini unavailable, tagging all news as neutral", "error", err)
		return neutralClassifier{}
	}
	return classifier
}

// NewCachedNewsRepository decorates the news repository with Redis caching.
// rdbがnilの場合はキャッシュなしで素通しになります。
func NewCachedNewsRepository(rdb *redis.Client, inner usecase.NewsRepository) usecase.NewsRepository {
	return cache.NewCachingNewsRepository(rdb, 2*time.Minute, inner, "news")
}

type neutralClassifier struct{}

func (neutralClassifier) Classify(ctx context.Context, text string) (entity.Sentiment, error) {
	return entity.SentimentNeutral, nil
}
