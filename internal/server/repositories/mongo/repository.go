// Package mongo implements repositories.Repository over MongoDB.
//
// Identifiers are generated by the application and stored in _id, so they
// sort the same way as in the relational adapter. Email uniqueness relies on
// the unique index created by Init; there are no foreign keys, and author
// joins are done with an aggregation pipeline.
package mongo

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/postboard/internal/logging"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	postsCollection = "posts"

	emailIndex  = "email_1"
	authorIndex = "authorId_1"
)

type Repository struct {
	client *mongo.Client
	users  *mongo.Collection
	posts  *mongo.Collection
	logger logging.Logger
}

var (
	_ repositories.Repository = (*Repository)(nil)
	_ repositories.Clearer    = (*Repository)(nil)
)

// New binds the repository to database dbName on client.
func New(client *mongo.Client, dbName string, logger logging.Logger) *Repository {
	db := client.Database(dbName)
	return &Repository{
		client: client,
		users:  db.Collection(usersCollection),
		posts:  db.Collection(postsCollection),
		logger: logger.With("adapter", "mongo"),
	}
}

// Open creates a client for uri. The driver connects lazily, so a reachable
// server is not required until the first operation.
func Open(ctx context.Context, uri, dbName string, logger logging.Logger) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return New(client, dbName, logger), nil
}

// Init creates the unique email index and the posts.authorId index.
// CreateOne with an identical specification is a no-op on the server.
func (r *Repository) Init(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(emailIndex),
	})
	if err != nil {
		return r.translateError(ctx, fmt.Errorf("create %s index: %w", emailIndex, err), "", "")
	}

	_, err = r.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "authorId", Value: 1}},
		Options: options.Index().SetName(authorIndex),
	})
	if err != nil {
		return r.translateError(ctx, fmt.Errorf("create %s index: %w", authorIndex, err), "", "")
	}
	return nil
}

func (r *Repository) CheckHealth(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return r.translateError(ctx, fmt.Errorf("ping: %w", err), "", "")
	}
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	if err := r.client.Disconnect(ctx); err != nil {
		return r.translateError(ctx, fmt.Errorf("disconnect: %w", err), "", "")
	}
	return nil
}

// Clear removes every document from both collections. Indexes are kept.
func (r *Repository) Clear(ctx context.Context) error {
	for _, coll := range []*mongo.Collection{r.posts, r.users} {
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return r.translateError(ctx, fmt.Errorf("clear %s: %w", coll.Name(), err), "", "")
		}
	}
	return nil
}
