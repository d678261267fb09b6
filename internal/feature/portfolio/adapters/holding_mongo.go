package adapters

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"finmonitor_backend/internal/feature/portfolio/domain"
	"finmonitor_backend/internal/feature/portfolio/domain/entity"
)

// holdingDoc はholdingsコレクションのドキュメントです。
type holdingDoc struct {
	ID            string    `bson:"_id"`
	PortfolioID   string    `bson:"portfolio_id"`
	Symbol        string    `bson:"symbol"`
	Quantity      float64   `bson:"quantity"`
	PurchasePrice float64   `bson:"purchase_price"`
	PurchaseDate  time.Time `bson:"purchase_date"`
	CreatedAt     time.Time `bson:"created_at"`
}

func toHoldingDoc(h entity.Holding) holdingDoc {
	return holdingDoc{
		ID:            h.ID,
		PortfolioID:   h.PortfolioID,
		Symbol:        h.Symbol,
		Quantity:      h.Quantity,
		PurchasePrice: h.PurchasePrice,
		PurchaseDate:  h.PurchaseDate,
		CreatedAt:     h.CreatedAt,
	}
}

func (d holdingDoc) toEntity() entity.Holding {
	return entity.Holding{
		ID:            d.ID,
		PortfolioID:   d.PortfolioID,
		Symbol:        d.Symbol,
		Quantity:      d.Quantity,
		PurchasePrice: d.PurchasePrice,
		PurchaseDate:  d.PurchaseDate,
		CreatedAt:     d.CreatedAt,
	}
}

// HoldingMongo is the MongoDB implementation of the holding repository.
type HoldingMongo struct {
	coll *mongo.Collection
}

// NewHoldingMongo creates the repository on the "holdings" collection.
func NewHoldingMongo(db *mongo.Database) *HoldingMongo {
	return &HoldingMongo{coll: db.Collection("holdings")}
}

// EnsureIndexes creates the portfolio lookup index.
func (r *HoldingMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "portfolio_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create holding indexes: %w", err)
	}
	return nil
}

// Insert adds a holding to its portfolio.
func (r *HoldingMongo) Insert(ctx context.Context, h entity.Holding) error {
	if _, err := r.coll.InsertOne(ctx, toHoldingDoc(h)); err != nil {
		return fmt.Errorf("insert holding: %w", err)
	}
	return nil
}

// ListByPortfolio returns the portfolio's holdings, oldest purchase first.
func (r *HoldingMongo) ListByPortfolio(ctx context.Context, portfolioID string) ([]entity.Holding, error) {
	opts := options.Find().SetSort(bson.D{{Key: "purchase_date", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "portfolio_id", Value: portfolioID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find holdings: %w", err)
	}
	defer cur.Close(ctx)

	out := []entity.Holding{}
	for cur.Next(ctx) {
		var d holdingDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode holding: %w", err)
		}
		out = append(out, d.toEntity())
	}
	return out, cur.Err()
}

// Delete removes one holding scoped by its portfolio.
func (r *HoldingMongo) Delete(ctx context.Context, portfolioID, holdingID string) error {
	filter := bson.D{{Key: "_id", Value: holdingID}, {Key: "portfolio_id", Value: portfolioID}}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrHoldingNotFound
	}
	return nil
}

// DeleteByPortfolio removes every holding of one portfolio (cascade).
func (r *HoldingMongo) DeleteByPortfolio(ctx context.Context, portfolioID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.D{{Key: "portfolio_id", Value: portfolioID}}); err != nil {
		return fmt.Errorf("cascade delete holdings: %w", err)
	}
	return nil
}

// DistinctSymbols returns every symbol held in any portfolio.
// The refresh scheduler uses it to build the tracked set.
func (r *HoldingMongo) DistinctSymbols(ctx context.Context) ([]string, error) {
	res := r.coll.Distinct(ctx, "symbol", bson.D{})
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("distinct holding symbols: %w", err)
	}
	var out []string
	if err := res.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode distinct symbols: %w", err)
	}
	return out, nil
}
