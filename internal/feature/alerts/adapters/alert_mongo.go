// Package adapters implements the MongoDB repository for alert rules.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"finmonitor_backend/internal/feature/alerts/domain"
	"finmonitor_backend/internal/feature/alerts/domain/entity"
)

// alertDoc はalert_rulesコレクションのドキュメントです。
type alertDoc struct {
	ID              string    `bson:"_id"`
	OwnerID         string    `bson:"owner_id"`
	Symbol          string    `bson:"symbol"`
	Condition       string    `bson:"condition"`
	Threshold       float64   `bson:"threshold"`
	Status          string    `bson:"status"`
	Rearm           bool      `bson:"rearm"`
	RearmMargin     float64   `bson:"rearm_margin,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	LastTriggeredAt time.Time `bson:"last_triggered_at,omitempty"`
}

func toAlertDoc(r entity.AlertRule) alertDoc {
	return alertDoc{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Symbol:          r.Symbol,
		Condition:       string(r.Condition),
		Threshold:       r.Threshold,
		Status:          string(r.Status),
		Rearm:           r.Rearm,
		RearmMargin:     r.RearmMargin,
		CreatedAt:       r.CreatedAt,
		LastTriggeredAt: r.LastTriggeredAt,
	}
}

func (d alertDoc) toEntity() entity.AlertRule {
	return entity.AlertRule{
		ID:              d.ID,
		OwnerID:         d.OwnerID,
		Symbol:          d.Symbol,
		Condition:       entity.Condition(d.Condition),
		Threshold:       d.Threshold,
		Status:          entity.Status(d.Status),
		Rearm:           d.Rearm,
		RearmMargin:     d.RearmMargin,
		CreatedAt:       d.CreatedAt,
		LastTriggeredAt: d.LastTriggeredAt,
	}
}

// AlertMongo is the MongoDB implementation of the alert rule repository.
type AlertMongo struct {
	coll *mongo.Collection
}

// NewAlertMongo creates the repository on the "alert_rules" collection.
func NewAlertMongo(db *mongo.Database) *AlertMongo {
	return &AlertMongo{coll: db.Collection("alert_rules")}
}

// EnsureIndexes creates the lookup indexes and the duplicate guard.
// activeなルールに限った部分ユニークインデックスにより、同一内容の
// activeルールは高々1件になります（triggered/disabledは重複可）。
func (r *AlertMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "symbol", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "symbol", Value: 1},
				{Key: "condition", Value: 1},
				{Key: "threshold", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: string(entity.StatusActive)}}),
		},
	})
	if err != nil {
		return fmt.Errorf("create alert indexes: %w", err)
	}
	return nil
}

// Create inserts a new rule. A duplicate active rule maps to ErrDuplicateRule.
func (r *AlertMongo) Create(ctx context.Context, rule entity.AlertRule) error {
	_, err := r.coll.InsertOne(ctx, toAlertDoc(rule))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateRule
	}
	if err != nil {
		return fmt.Errorf("insert alert rule: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's rules, newest first.
func (r *AlertMongo) ListByOwner(ctx context.Context, ownerID string) ([]entity.AlertRule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "owner_id", Value: ownerID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find alert rules: %w", err)
	}
	defer cur.Close(ctx)

	return decodeRules(ctx, cur)
}

// Get returns one rule scoped by owner.
func (r *AlertMongo) Get(ctx context.Context, ownerID, id string) (entity.AlertRule, error) {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}

	var d alertDoc
	err := r.coll.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.AlertRule{}, domain.ErrRuleNotFound
	}
	if err != nil {
		return entity.AlertRule{}, fmt.Errorf("find alert rule: %w", err)
	}
	return d.toEntity(), nil
}

// Delete removes an owned rule.
func (r *AlertMongo) Delete(ctx context.Context, ownerID, id string) error {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete alert rule: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

// BySymbol returns the rules on a symbol in the given statuses.
// 評価はリフレッシュされたシンボル単位で走るため、全件スキャンは行いません。
func (r *AlertMongo) BySymbol(ctx context.Context, symbol string, statuses ...entity.Status) ([]entity.AlertRule, error) {
	ss := make([]string, 0, len(statuses))
	for _, s := range statuses {
		ss = append(ss, string(s))
	}
	filter := bson.D{
		{Key: "symbol", Value: symbol},
		{Key: "status", Value: bson.D{{Key: "$in", Value: ss}}},
	}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find alert rules by symbol: %w", err)
	}
	defer cur.Close(ctx)

	return decodeRules(ctx, cur)
}

// MarkTriggered transitions a rule from active to triggered, exactly once.
// フィルタにstatus=activeを含めた条件付き更新なので、並行する評価が同じ
// ルールを同時に発火させることはできません。勝者だけがtrueを受け取ります。
func (r *AlertMongo) MarkTriggered(ctx context.Context, id string, at time.Time) (bool, error) {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "status", Value: string(entity.StatusActive)},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(entity.StatusTriggered)},
		{Key: "last_triggered_at", Value: at},
	}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mark alert triggered: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// Rearm transitions a rule from triggered back to active.
// 自動再武装と、オーナーの明示的なリセットの両方で使われます。
func (r *AlertMongo) Rearm(ctx context.Context, id string) (bool, error) {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "status", Value: string(entity.StatusTriggered)},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(entity.StatusActive)},
	}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("rearm alert rule: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// SetStatus sets an owned rule's status unconditionally (owner actions).
func (r *AlertMongo) SetStatus(ctx context.Context, ownerID, id string, status entity.Status) error {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(status)}}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("set alert status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

// ActiveSymbols returns the distinct symbols with at least one active rule.
// リフレッシュループの追跡対象集合に加わります。
func (r *AlertMongo) ActiveSymbols(ctx context.Context) ([]string, error) {
	filter := bson.D{{Key: "status", Value: string(entity.StatusActive)}}
	res := r.coll.Distinct(ctx, "symbol", filter)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("distinct alert symbols: %w", err)
	}

	var symbols []string
	if err := res.Decode(&symbols); err != nil {
		return nil, fmt.Errorf("decode alert symbols: %w", err)
	}
	return symbols, nil
}

func decodeRules(ctx context.Context, cur *mongo.Cursor) ([]entity.AlertRule, error) {
	out := []entity.AlertRule{}
	for cur.Next(ctx) {
		var d alertDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode alert rule: %w", err)
		}
		out = append(out, d.toEntity())
	}
	return out, cur.Err()
}
