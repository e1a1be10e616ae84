package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoConnectTimeout = 10 * time.Second

type MongoStorage struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoStorage(ctx context.Context, uri, database string) (*MongoStorage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStorage{
		Client:   client,
		Database: client.Database(database),
	}, nil
}

func (that *MongoStorage) Close(ctx context.Context) error {
	return that.Client.Disconnect(ctx)
}
