// Package usecase はニュースの取り込みと読み出しのビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"finmonitor_backend/internal/feature/news/domain/entity"
	sentity "finmonitor_backend/internal/feature/symbols/domain/entity"
)

// NewsRepository はニュース項目の永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type NewsRepository interface {
	// Insert は冪等な挿入です。フィンガープリント衝突時は inserted=false を返します。
	Insert(ctx context.Context, n entity.NewsItem) (bool, error)
	Exists(ctx context.Context, fingerprint string) (bool, error)
	List(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error)
}

// SymbolDirectory は既知銘柄の一覧を提供します。
type SymbolDirectory interface {
	ListActiveSymbols(ctx context.Context) ([]sentity.Symbol, error)
}

// SentimentClassifier は外部のセンチメント分類器を抽象化します。
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (entity.Sentiment, error)
}

// RawItem は取り込み前のニュース項目です。
type RawItem struct {
	Title       string
	Summary     string
	Source      string
	URL         string
	PublishedAt time.Time
}

// IngestUsecase はニュースの冪等な取り込みパイプラインを実装します。
//
// 分類器の呼び出しは項目ごとに高々1回です。既存項目（フィンガープリント
// 一致）は分類前に弾かれ、並行する取り込みとの競合はストアのユニーク
// インデックスが吸収します。
type IngestUsecase struct {
	repo       NewsRepository
	symbols    SymbolDirectory
	classifier SentimentClassifier
}

// NewIngestUsecase はIngestUsecaseの新しいインスタンスを生成します。
func NewIngestUsecase(repo NewsRepository, symbols SymbolDirectory, classifier SentimentClassifier) *IngestUsecase {
	return &IngestUsecase{repo: repo, symbols: symbols, classifier: classifier}
}

// Ingest は1件を取り込み、新規に保存された場合のみtrueを返します。
// 重複はエラーではなく冪等な無操作です。
func (iu *IngestUsecase) Ingest(ctx context.Context, raw RawItem) (bool, error) {
	fp := entity.Fingerprint(raw.Title, raw.Source, raw.PublishedAt)

	exists, err := iu.repo.Exists(ctx, fp)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	directory, err := iu.symbols.ListActiveSymbols(ctx)
	if err != nil {
		return false, err
	}
	related := matchSymbols(raw.Title+" "+raw.Summary, directory)

	// 分類は項目ごとに1回だけ。失敗はneutralへ倒して取り込み自体は続行する
	sentiment, err := iu.classifier.Classify(ctx, raw.Title+"\n"+raw.Summary)
	if err != nil {
		slog.WarnContext(ctx, "sentiment classification failed", "title", raw.Title, "error", err)
		sentiment = entity.SentimentNeutral
	}

	item := entity.NewsItem{
		ID:             uuid.NewString(),
		Fingerprint:    fp,
		Title:          strings.TrimSpace(raw.Title),
		Summary:        strings.TrimSpace(raw.Summary),
		Source:         strings.TrimSpace(raw.Source),
		URL:            raw.URL,
		Sentiment:      sentiment,
		RelatedSymbols: related,
		PublishedAt:    raw.PublishedAt.UTC(),
		IngestedAt:     time.Now().UTC(),
	}
	return iu.repo.Insert(ctx, item)
}

// IngestAll は複数件を順に取り込み、新規保存数を返します。
// 1件の失敗はバッチ全体を止めません。
func (iu *IngestUsecase) IngestAll(ctx context.Context, items []RawItem) (int, error) {
	inserted := 0
	for _, raw := range items {
		ok, err := iu.Ingest(ctx, raw)
		if err != nil {
			slog.ErrorContext(ctx, "news ingest failed", "title", raw.Title, "error", err)
			continue
		}
		if ok {
			inserted++
		}
	}
	slog.InfoContext(ctx, "news ingest finished", "total", len(items), "inserted", inserted)
	return inserted, nil
}

// matchSymbols はタイトルと要約から既知銘柄の言及を拾います。
// コードはトークン一致、銘柄名は大文字小文字を無視した部分一致です。
func matchSymbols(text string, directory []sentity.Symbol) []string {
	tokens := map[string]struct{}{}
	for _, t := range strings.FieldsFunc(text, func(r rune) bool {
		return !('A' <= r && r <= 'Z' || 'a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '.')
	}) {
		tokens[strings.ToUpper(t)] = struct{}{}
	}
	lower := strings.ToLower(text)

	out := []string{}
	for _, s := range directory {
		if _, ok := tokens[strings.ToUpper(s.Code)]; ok {
			out = append(out, s.Code)
			continue
		}
		if name := strings.ToLower(s.Name); name != "" && strings.Contains(lower, name) {
			out = append(out, s.Code)
		}
	}
	return out
}
