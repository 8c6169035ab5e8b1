package client

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoClient struct {
	client *mongo.Client
	db     *mongo.Database
}

type MongoOptions struct {
	URI                    string
	Database               string
	ServerSelectionTimeout time.Duration
	RetryDelay             time.Duration
}

// NewMongoClient blocks until the deployment answers a ping or ctx is done.
func NewMongoClient(ctx context.Context, opts MongoOptions) (*MongoClient, error) {
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.ServerSelectionTimeout)

	var client *mongo.Client
	err := connectWithRetry(ctx, "mongodb", opts.RetryDelay, func(ctx context.Context) error {
		c, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return fmt.Errorf("failed to ping: %w", err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &MongoClient{client: client, db: client.Database(opts.Database)}, nil
}

func (c *MongoClient) Database() *mongo.Database {
	return c.db
}

func (c *MongoClient) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *MongoClient) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
