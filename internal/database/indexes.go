package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ProductIndexes backs the listing query: newest first, optionally narrowed by type.
func ProductIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("type_createdAt"),
		},
	}
}

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	zap.S().Info("EnsureProductIndexes: creating product indexes")
	names, err := indexes.CreateMany(ctx, ProductIndexes())
	if err != nil {
		zap.S().Errorf("EnsureProductIndexes: index error: %v", err)
		return err
	}
	zap.S().Infof("EnsureProductIndexes: indexes ready: %v", names)
	return nil
}
