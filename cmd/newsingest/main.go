package main

import (
	"context"
	"log"
	"time"

	"finmonitor_backend/internal/app/di"
	newsadapters "finmonitor_backend/internal/feature/news/adapters"
	newsusecase "finmonitor_backend/internal/feature/news/usecase"
	symboladapters "finmonitor_backend/internal/feature/symbols/adapters"
	symbolentity "finmonitor_backend/internal/feature/symbols/domain/entity"
	symbolusecase "finmonitor_backend/internal/feature/symbols/usecase"
	infradb "finmonitor_backend/internal/platform/db"
	inframongo "finmonitor_backend/internal/platform/mongo"
)

// defaultSymbols は銘柄ディレクトリが空のときの初期データです。
var defaultSymbols = []symbolentity.Symbol{
	{Code: "AAPL", Name: "Apple Inc.", Market: "NASDAQ", IsActive: true, SortKey: 1},
	{Code: "MSFT", Name: "Microsoft Corporation", Market: "NASDAQ", IsActive: true, SortKey: 2},
	{Code: "GOOGL", Name: "Alphabet Inc.", Market: "NASDAQ", IsActive: true, SortKey: 3},
	{Code: "AMZN", Name: "Amazon.com Inc.", Market: "NASDAQ", IsActive: true, SortKey: 4},
	{Code: "NVDA", Name: "NVIDIA Corporation", Market: "NASDAQ", IsActive: true, SortKey: 5},
	{Code: "TSLA", Name: "Tesla Inc.", Market: "NASDAQ", IsActive: true, SortKey: 6},
	{Code: "META", Name: "Meta Platforms Inc.", Market: "NASDAQ", IsActive: true, SortKey: 7},
	{Code: "JPM", Name: "JPMorgan Chase & Co.", Market: "NYSE", IsActive: true, SortKey: 8},
}

const fetchLimit = 50

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := infradb.OpenDB(&symbolentity.Symbol{})
	mongoClient, mongoDB, err := inframongo.NewMongoClient()
	if err != nil {
		log.Fatal("MongoDB is required:", err)
	}
	defer mongoClient.Disconnect(context.Background())

	newsRepo := newsadapters.NewNewsMongo(mongoDB)
	if err := newsRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to ensure news indexes:", err)
	}

	symbolRepo := symboladapters.NewSymbolRepository(db)
	if err := symbolRepo.Seed(ctx, defaultSymbols); err != nil {
		log.Fatal("failed to seed symbols:", err)
	}

	feed := di.NewNewsFeed()
	classifier := di.NewSentimentClassifier(ctx)
	uc := newsusecase.NewIngestUsecase(newsRepo, symbolusecase.NewSymbolUsecase(symbolRepo), classifier)

	items, err := feed.FetchLatest(ctx, fetchLimit)
	if err != nil {
		log.Fatal("failed to fetch news feed:", err)
	}

	stored, err := uc.IngestAll(ctx, items)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("ingest ok: %d fetched, %d stored", len(items), stored)
}
