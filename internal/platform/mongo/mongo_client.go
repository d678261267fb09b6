// Package mongo provides the MongoDB client used by the document repositories.
package mongo

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// NewMongoClient は環境変数 MONGO_URL / DB_NAME からMongoDBに接続し、
// 対象データベースのハンドルを返します。
func NewMongoClient() (*mongo.Client, *mongo.Database, error) {
	uri := os.Getenv("MONGO_URL")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = "finmonitor"
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		slog.Error("MongoDB connection failed", "uri", uri, "error", err)
		return nil, nil, err
	}

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		slog.Error("MongoDB ping failed", "uri", uri, "error", err)
		return nil, nil, err
	}

	slog.Info("MongoDB connection successful", "database", name)
	return client, client.Database(name), nil
}
