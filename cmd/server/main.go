package main

import (
	"context"
	"log"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"finmonitor_backend/internal/app/di"
	"finmonitor_backend/internal/app/router"
	"finmonitor_backend/internal/app/scheduler"
	alertadapters "finmonitor_backend/internal/feature/alerts/adapters"
	alertengine "finmonitor_backend/internal/feature/alerts/engine"
	"finmonitor_backend/internal/feature/alerts/notify"
	alerthandler "finmonitor_backend/internal/feature/alerts/transport/handler"
	alertusecase "finmonitor_backend/internal/feature/alerts/usecase"
	newsadapters "finmonitor_backend/internal/feature/news/adapters"
	newshandler "finmonitor_backend/internal/feature/news/transport/handler"
	newsusecase "finmonitor_backend/internal/feature/news/usecase"
	portfolioadapters "finmonitor_backend/internal/feature/portfolio/adapters"
	portfoliohandler "finmonitor_backend/internal/feature/portfolio/transport/handler"
	portfoliousecase "finmonitor_backend/internal/feature/portfolio/usecase"
	"finmonitor_backend/internal/feature/quotes/fetch"
	"finmonitor_backend/internal/feature/quotes/store"
	quotehandler "finmonitor_backend/internal/feature/quotes/transport/handler"
	quotesusecase "finmonitor_backend/internal/feature/quotes/usecase"
	valuationadapters "finmonitor_backend/internal/feature/valuation/adapters"
	valuationhandler "finmonitor_backend/internal/feature/valuation/transport/handler"
	valuationusecase "finmonitor_backend/internal/feature/valuation/usecase"
	infradb "finmonitor_backend/internal/platform/db"
	inframongo "finmonitor_backend/internal/platform/mongo"
	infraredis "finmonitor_backend/internal/platform/redis"
	"finmonitor_backend/internal/shared/ratelimiter"
)

func main() {
	ctx := context.Background()

	// db (スナップショット系列はRDB)
	db := infradb.OpenDB(&valuationadapters.SnapshotModel{})

	// MongoDB (ポートフォリオ・アラート・ニュース)
	mongoClient, mongoDB, err := inframongo.NewMongoClient()
	if err != nil {
		log.Fatal("MongoDB is required:", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Println("[ERROR] Failed to disconnect MongoDB client:", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	portfolioRepo := portfolioadapters.NewPortfolioMongo(mongoDB)
	holdingRepo := portfolioadapters.NewHoldingMongo(mongoDB)
	alertRepo := alertadapters.NewAlertMongo(mongoDB)
	newsRepo := newsadapters.NewNewsMongo(mongoDB)
	snapshotRepo := valuationadapters.NewSnapshotRepository(db)
	ensureIndexes(ctx, portfolioRepo, holdingRepo, alertRepo, newsRepo)

	// Redisキャッシュでラップ
	cachedNewsRepo := di.NewCachedNewsRepository(rdb, newsRepo)

	// クオートストアとフェッチコーディネーター
	quoteStore := store.NewStore(store.DefaultTTL, store.DefaultMaxStaleness)
	// 無料プランの上限 (8リクエスト/分) に合わせる
	limiter := ratelimiter.NewRateLimiter(8, time.Minute)
	coordinator := fetch.NewCoordinator(di.NewQuoteProvider(), quoteStore, limiter, fetch.DefaultConfig())

	// アラートエンジンをリフレッシュ通知に接続
	hub := notify.NewHub()
	defer hub.Close()
	engine := alertengine.NewEngine(alertRepo, notify.Fanout{notify.NewSlogNotifier(), hub})
	coordinator.AddListener(engine)

	// Usecase
	quotesUC := quotesusecase.NewQuotesUsecase(quoteStore, coordinator, quotesusecase.DefaultFetchWait)
	portfolioUC := portfoliousecase.NewPortfolioUsecase(portfolioRepo, holdingRepo, snapshotRepo)
	valuationUC := valuationusecase.NewValuationUsecase(portfolioRepo, holdingRepo, quoteStore, snapshotRepo)
	alertUC := alertusecase.NewAlertUsecase(alertRepo)
	newsUC := newsusecase.NewNewsUsecase(cachedNewsRepo)

	// Handler
	quotesH := quotehandler.NewQuoteHandler(quotesUC)
	portfolioH := portfoliohandler.NewPortfolioHandler(portfolioUC)
	valuationH := valuationhandler.NewValuationHandler(valuationUC)
	alertH := alerthandler.NewAlertHandler(alertUC)
	newsH := newshandler.NewNewsHandler(newsUC)

	// ルータ生成
	router := router.NewRouter(quotesH, portfolioH, valuationH, alertH, newsH, hub)

	// バックグラウンドジョブ
	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	refreshLoop := scheduler.NewRefreshLoop(holdingRepo, alertRepo, coordinator, quoteStore, scheduler.DefaultRefreshInterval)
	snapshotLoop := scheduler.NewSnapshotLoop(portfolioRepo, valuationUC, scheduler.DefaultSnapshotInterval, valuationusecase.DefaultRetention)
	go refreshLoop.Run(jobCtx)
	go snapshotLoop.Run(jobCtx)

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("JWT_SECRET") == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// ensureIndexes は各コレクションのインデックスを起動時に作成します。
// アラートの厳密一回発火とニュースの冪等性はユニークインデックス前提なので、
// 作成失敗は起動失敗として扱います。
func ensureIndexes(ctx context.Context, repos ...indexer) {
	for _, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			log.Fatal("failed to ensure indexes:", err)
		}
	}
}
