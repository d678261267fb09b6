// Package usecase はクオート読み取りのビジネスロジックを実装します。
package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finmonitor_backend/internal/feature/quotes/domain"
	"finmonitor_backend/internal/feature/quotes/domain/entity"
)

const (
	// MaxBatchSymbols は1リクエストで受け付ける銘柄数の上限です。
	MaxBatchSymbols = 50
	// DefaultFetchWait はリフレッシュ待ちのデフォルトデッドラインです。
	// これを超えた呼び出しはステイルキャッシュへフォールバックします。
	DefaultFetchWait = 5 * time.Second
)

// QuoteCache はクオートストアの読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type QuoteCache interface {
	// GetFresh はTTL内のエントリのみを返します。
	GetFresh(symbol string) (entity.Quote, bool)
	// Get は鮮度に関わらずキャッシュ値を返します。
	Get(symbol string) (entity.Quote, bool)
}

// QuoteRefresher はフェッチコーディネーターを抽象化します。
type QuoteRefresher interface {
	Refresh(ctx context.Context, symbol string) (entity.Quote, error)
}

// QuotesUsecase はクオート読み取りのユースケースを定義します。
type QuotesUsecase struct {
	cache     QuoteCache
	refresher QuoteRefresher
	fetchWait time.Duration
}

// NewQuotesUsecase はQuotesUsecaseの新しいインスタンスを生成します。
func NewQuotesUsecase(cache QuoteCache, refresher QuoteRefresher, fetchWait time.Duration) *QuotesUsecase {
	if fetchWait <= 0 {
		fetchWait = DefaultFetchWait
	}
	return &QuotesUsecase{cache: cache, refresher: refresher, fetchWait: fetchWait}
}

// GetQuote は1銘柄のクオートを返します。
// TTL内ならキャッシュヒットで即返し、そうでなければリフレッシュを試みます。
// リフレッシュに失敗してもキャッシュ値があればステイルフラグ付きで返します。
func (qu *QuotesUsecase) GetQuote(ctx context.Context, symbol string) (entity.QuoteResult, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return entity.QuoteResult{}, domain.ErrNoSymbols
	}

	if q, ok := qu.cache.GetFresh(symbol); ok {
		return entity.QuoteResult{Quote: q}, nil
	}

	fctx, cancel := context.WithTimeout(ctx, qu.fetchWait)
	defer cancel()

	q, err := qu.refresher.Refresh(fctx, symbol)
	if err == nil {
		return entity.QuoteResult{Quote: q}, nil
	}

	// ステイルキャッシュ優先: 完全な失敗よりも古い値を明示フラグ付きで返す
	if cached, ok := qu.cache.Get(symbol); ok {
		return entity.QuoteResult{Quote: cached, Stale: true}, nil
	}
	return entity.QuoteResult{}, err
}

// GetQuotes は複数銘柄のクオートをまとめて返します。
// 銘柄単位の失敗はバッチ全体を中断せず、errsに分離して返します。
func (qu *QuotesUsecase) GetQuotes(ctx context.Context, symbols []string) (map[string]entity.QuoteResult, map[string]error, error) {
	normalized := NormalizeSymbols(symbols)
	if len(normalized) == 0 {
		return nil, nil, domain.ErrNoSymbols
	}
	if len(normalized) > MaxBatchSymbols {
		normalized = normalized[:MaxBatchSymbols]
	}

	var (
		mu      sync.Mutex
		results = make(map[string]entity.QuoteResult, len(normalized))
		errs    = make(map[string]error)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range normalized {
		g.Go(func() error {
			res, err := qu.GetQuote(gctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[symbol] = err
				return nil // 銘柄単位の失敗は伝播させない
			}
			results[symbol] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, errs, nil
}

// NormalizeSymbol はティッカーを正規化します（前後空白除去・大文字化）。
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeSymbols は正規化と重複除去を行い、入力順を保持します。
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		n := NormalizeSymbol(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
