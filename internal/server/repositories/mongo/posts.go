package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreatePost stores post after checking that its author exists. There is no
// foreign key, so an author deleted between the check and the insert still
// leaves an orphan; joined reads report it as Internal.
func (r *Repository) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	authorID := post.OwnerID()
	err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: authorID}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, r.translateError(ctx, fmt.Errorf("author %q does not exist", authorID), "", "")
	case err != nil:
		return nil, r.translateError(ctx, fmt.Errorf("find post author: %w", err), "", "")
	}

	if _, err := r.posts.InsertOne(ctx, newPostDocument(post)); err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("insert post: %w", err), "Post", post.ID)
	}
	return post, nil
}

func (r *Repository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	posts, err := r.aggregate(ctx, authorPipeline(bson.D{{Key: "_id", Value: id}}, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, apperr.NotFound("Post '%s' not found", id)
	}
	return posts[0], nil
}

func (r *Repository) GetPosts(ctx context.Context, p models.Pagination) ([]*models.Post, error) {
	var filter bson.D
	if p.AuthorID != "" {
		filter = bson.D{{Key: "authorId", Value: p.AuthorID}}
	}
	return r.aggregate(ctx, authorPipeline(filter, p.Offset, p.Limit))
}

func (r *Repository) aggregate(ctx context.Context, pipeline any) ([]*models.Post, error) {
	cur, err := r.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("aggregate posts: %w", err), "", "")
	}

	var views []postView
	if err := cur.All(ctx, &views); err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("decode posts: %w", err), "", "")
	}

	posts := make([]*models.Post, 0, len(views))
	for _, v := range views {
		if v.Author == nil {
			return nil, r.translateError(ctx, fmt.Errorf("post %s references a missing author", v.ID), "", "")
		}
		posts = append(posts, v.model())
	}
	return posts, nil
}

// UpdatePost overwrites title, content and updatedAt of the post with
// post.ID. Ownership is the caller's concern.
func (r *Repository) UpdatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: post.Title},
		{Key: "content", Value: post.Content},
		{Key: "updatedAt", Value: post.UpdatedAt},
	}}}

	res, err := r.posts.UpdateOne(ctx, bson.D{{Key: "_id", Value: post.ID}}, update)
	if err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("update post: %w", err), "Post", post.ID)
	}
	if res.MatchedCount == 0 {
		return nil, apperr.NotFound("Post '%s' not found", post.ID)
	}
	return post, nil
}

func (r *Repository) DeletePostByID(ctx context.Context, id string) error {
	res, err := r.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return r.translateError(ctx, fmt.Errorf("delete post: %w", err), "Post", id)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Post '%s' not found", id)
	}
	return nil
}
