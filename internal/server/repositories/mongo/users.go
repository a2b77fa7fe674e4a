package mongo

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
)

func (r *Repository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, err := r.users.InsertOne(ctx, newUserDocument(user)); err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("insert user: %w", err), "User", user.Email)
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, bson.D{{Key: "email", Value: email}}, email)
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findUser(ctx, bson.D{{Key: "_id", Value: id}}, id)
}

func (r *Repository) findUser(ctx context.Context, filter bson.D, key string) (*models.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("find user: %w", err), "User", key)
	}
	return doc.model(), nil
}

// DeleteUserByID removes the user and then the posts they authored. The two
// deletes are not atomic.
func (r *Repository) DeleteUserByID(ctx context.Context, id string) error {
	res, err := r.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return r.translateError(ctx, fmt.Errorf("delete user: %w", err), "User", id)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("User '%s' not found", id)
	}

	if _, err := r.posts.DeleteMany(ctx, bson.D{{Key: "authorId", Value: id}}); err != nil {
		return r.translateError(ctx, fmt.Errorf("delete posts of user: %w", err), "User", id)
	}
	return nil
}
