// Package gemini はGoogle Gemini APIを使用したセンチメント分類クライアントを提供します。
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"finmonitor_backend/internal/feature/news/domain/entity"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	prompt = "Classify the sentiment of the following financial news item. " +
		"Answer with exactly one word: positive, negative, or neutral.\n\n"
)

// GeminiClassifier はGoogle Gemini APIでニュースのセンチメントを分類します。
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier はADCを使用してGeminiClassifierの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewGeminiClassifier(ctx context.Context) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClassifier{client: client, model: DefaultModel}, nil
}

// Classify はニュース本文を1回のAPI呼び出しで3値に分類します。
// モデルの出力が3値のいずれでもない場合はneutralを返します。
func (g *GeminiClassifier) Classify(ctx context.Context, text string) (entity.Sentiment, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt+text), nil)
	if err != nil {
		return entity.SentimentNeutral, fmt.Errorf("gemini API request failed: %w", err)
	}
	return entity.ParseSentiment(resp.Text()), nil
}
