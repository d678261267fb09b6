// Package adapters implements the MongoDB repository for news items.
package adapters

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"finmonitor_backend/internal/feature/news/domain/entity"
)

// newsDoc はnews_itemsコレクションのドキュメントです。
type newsDoc struct {
	ID             string    `bson:"_id"`
	Fingerprint    string    `bson:"fingerprint"`
	Title          string    `bson:"title"`
	Summary        string    `bson:"summary,omitempty"`
	Source         string    `bson:"source"`
	URL            string    `bson:"url,omitempty"`
	Sentiment      string    `bson:"sentiment"`
	RelatedSymbols []string  `bson:"related_symbols,omitempty"`
	PublishedAt    time.Time `bson:"published_at"`
	IngestedAt     time.Time `bson:"ingested_at"`
}

func toNewsDoc(n entity.NewsItem) newsDoc {
	return newsDoc{
		ID:             n.ID,
		Fingerprint:    n.Fingerprint,
		Title:          n.Title,
		Summary:        n.Summary,
		Source:         n.Source,
		URL:            n.URL,
		Sentiment:      string(n.Sentiment),
		RelatedSymbols: n.RelatedSymbols,
		PublishedAt:    n.PublishedAt,
		IngestedAt:     n.IngestedAt,
	}
}

func (d newsDoc) toEntity() entity.NewsItem {
	return entity.NewsItem{
		ID:             d.ID,
		Fingerprint:    d.Fingerprint,
		Title:          d.Title,
		Summary:        d.Summary,
		Source:         d.Source,
		URL:            d.URL,
		Sentiment:      entity.Sentiment(d.Sentiment),
		RelatedSymbols: d.RelatedSymbols,
		PublishedAt:    d.PublishedAt,
		IngestedAt:     d.IngestedAt,
	}
}

// NewsMongo is the MongoDB implementation of the news repository.
type NewsMongo struct {
	coll *mongo.Collection
}

// NewNewsMongo creates the repository on the "news_items" collection.
func NewNewsMongo(db *mongo.Database) *NewsMongo {
	return &NewsMongo{coll: db.Collection("news_items")}
}

// EnsureIndexes creates the fingerprint uniqueness guard and the read indexes.
func (r *NewsMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "related_symbols", Value: 1}, {Key: "published_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "published_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create news indexes: %w", err)
	}
	return nil
}

// Insert persists a news item. A fingerprint collision is an idempotent
// no-op: the method reports inserted=false without an error.
func (r *NewsMongo) Insert(ctx context.Context, n entity.NewsItem) (bool, error) {
	_, err := r.coll.InsertOne(ctx, toNewsDoc(n))
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert news item: %w", err)
	}
	return true, nil
}

// Exists reports whether an item with the fingerprint is already stored.
func (r *NewsMongo) Exists(ctx context.Context, fingerprint string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.D{{Key: "fingerprint", Value: fingerprint}},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count news items: %w", err)
	}
	return count > 0, nil
}

// List returns stored items most recent first, optionally filtered by symbol.
// カーソルで読み進めるため、全件をメモリへ抱え込みません。
func (r *NewsMongo) List(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error) {
	filter := bson.D{}
	if symbol != "" {
		filter = bson.D{{Key: "related_symbols", Value: symbol}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find news items: %w", err)
	}
	defer cur.Close(ctx)

	out := []entity.NewsItem{}
	for cur.Next(ctx) {
		var d newsDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode news item: %w", err)
		}
		out = append(out, d.toEntity())
	}
	return out, cur.Err()
}
