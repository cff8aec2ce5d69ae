// Package dbmongo owns the document store connection and the typed models
// stored in it. Query shape lives in the domain repositories; no business
// logic here.
package dbmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"instafeed/internal/config"
)

type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
	GridFS   *gridfs.Bucket
}

func NewMongoConnection(c *config.Config) (*MongoClient, error) {
	uri := c.GetMongoURI()
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	database := client.Database(c.MongoDB.Database)
	bucket, err := gridfs.NewBucket(database)
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}

	return &MongoClient{
		Client:   client,
		Database: database,
		GridFS:   bucket,
	}, nil
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}

func (mc *MongoClient) Users() *mongo.Collection    { return mc.Database.Collection(CollUsers) }
func (mc *MongoClient) Posts() *mongo.Collection    { return mc.Database.Collection(CollPosts) }
func (mc *MongoClient) Comments() *mongo.Collection { return mc.Database.Collection(CollComments) }
func (mc *MongoClient) Saves() *mongo.Collection    { return mc.Database.Collection(CollSaves) }

// EnsureIndexes creates the indexes every query path relies on: unique
// alias/email, the posts text index used by search, and the unique
// (user, post) constraint that de-duplicates saves.
func (mc *MongoClient) EnsureIndexes(ctx context.Context) error {
	_, err := mc.Users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "alias", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = mc.Posts().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "content", Value: "text"},
				{Key: "tags", Value: "text"},
				{Key: "location", Value: "text"},
			},
		},
		{Keys: bson.D{{Key: "creator", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("posts indexes: %w", err)
	}

	_, err = mc.Saves().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user", Value: 1},
			{Key: "post", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("saves index: %w", err)
	}

	_, err = mc.Comments().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "post", Value: 1},
			{Key: "isChild", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("comments index: %w", err)
	}

	return nil
}
