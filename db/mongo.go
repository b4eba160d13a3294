// Package db owns the MongoDB connection lifecycle: opened once at startup,
// handed to the services, closed on shutdown.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names within the service database.
const (
	UsersCollection    = "users"
	ProjectsCollection = "projects"
	TasksCollection    = "tasks"
	CommentsCollection = "comments"
	ActionsCollection  = "actions"
)

type Store struct {
	client *mongo.Client

	Users    *mongo.Collection
	Projects *mongo.Collection
	Tasks    *mongo.Collection
	Comments *mongo.Collection
	Actions  *mongo.Collection
}

// Connect opens and pings a MongoDB connection and resolves the service
// collections.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	database := client.Database(dbName)
	return &Store{
		client:   client,
		Users:    database.Collection(UsersCollection),
		Projects: database.Collection(ProjectsCollection),
		Tasks:    database.Collection(TasksCollection),
		Comments: database.Collection(CommentsCollection),
		Actions:  database.Collection(ActionsCollection),
	}, nil
}

// EnsureIndexes creates the unique email index on users.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.Users.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create unique index on user email: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
