// Package adapters implements the MongoDB repositories for the portfolio feature.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"finmonitor_backend/internal/feature/portfolio/domain"
	"finmonitor_backend/internal/feature/portfolio/domain/entity"
)

// portfolioDoc はportfoliosコレクションのドキュメントです。
// エンティティとの変換はこのファイルに閉じ込めます。
type portfolioDoc struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"owner_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toPortfolioDoc(p entity.Portfolio) portfolioDoc {
	return portfolioDoc{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d portfolioDoc) toEntity() entity.Portfolio {
	return entity.Portfolio{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// PortfolioMongo is the MongoDB implementation of the portfolio repository.
type PortfolioMongo struct {
	coll *mongo.Collection
}

// NewPortfolioMongo creates the repository on the "portfolios" collection.
func NewPortfolioMongo(db *mongo.Database) *PortfolioMongo {
	return &PortfolioMongo{coll: db.Collection("portfolios")}
}

// EnsureIndexes creates the owner lookup index.
func (r *PortfolioMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create portfolio indexes: %w", err)
	}
	return nil
}

// Create inserts a new portfolio.
func (r *PortfolioMongo) Create(ctx context.Context, p entity.Portfolio) error {
	if _, err := r.coll.InsertOne(ctx, toPortfolioDoc(p)); err != nil {
		return fmt.Errorf("insert portfolio: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's portfolios, newest first.
func (r *PortfolioMongo) ListByOwner(ctx context.Context, ownerID string) ([]entity.Portfolio, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "owner_id", Value: ownerID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find portfolios: %w", err)
	}
	defer cur.Close(ctx)

	out := []entity.Portfolio{}
	for cur.Next(ctx) {
		var d portfolioDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode portfolio: %w", err)
		}
		out = append(out, d.toEntity())
	}
	return out, cur.Err()
}

// Get returns one portfolio scoped by owner.
func (r *PortfolioMongo) Get(ctx context.Context, ownerID, id string) (entity.Portfolio, error) {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}

	var d portfolioDoc
	err := r.coll.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.Portfolio{}, domain.ErrPortfolioNotFound
	}
	if err != nil {
		return entity.Portfolio{}, fmt.Errorf("find portfolio: %w", err)
	}
	return d.toEntity(), nil
}

// Update rewrites name/description of an owned portfolio.
func (r *PortfolioMongo) Update(ctx context.Context, p entity.Portfolio) error {
	filter := bson.D{{Key: "_id", Value: p.ID}, {Key: "owner_id", Value: p.OwnerID}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: p.Name},
		{Key: "description", Value: p.Description},
		{Key: "updated_at", Value: p.UpdatedAt},
	}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update portfolio: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPortfolioNotFound
	}
	return nil
}

// Delete removes an owned portfolio. Cascading the holdings is the
// usecase's job so both deletions happen under the portfolio lock.
func (r *PortfolioMongo) Delete(ctx context.Context, ownerID, id string) error {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete portfolio: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPortfolioNotFound
	}
	return nil
}

// ListAllIDs returns every portfolio id; used by the snapshot job.
func (r *PortfolioMongo) ListAllIDs(ctx context.Context) ([]string, error) {
	res := r.coll.Distinct(ctx, "_id", bson.D{})
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("distinct portfolio ids: %w", err)
	}

	var ids []string
	if err := res.Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode portfolio ids: %w", err)
	}
	return ids, nil
}
