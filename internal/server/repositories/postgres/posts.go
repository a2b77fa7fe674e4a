package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/postboard/internal/server/models"
)

// postWithAuthor selects a post and its author. The join is a LEFT JOIN so a
// post whose author row is gone is reported instead of silently skipped.
const postWithAuthor = `SELECT p.id, p.title, p.content, p.author_id, p.created_at, p.updated_at,
       u.id, u.email, u.name, u.created_at
  FROM posts p
  LEFT JOIN users u ON u.id = p.author_id`

func (r *Repository) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (id, title, content, author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.q.ExecContext(ctx, query,
		post.ID, post.Title, post.Content, post.OwnerID(), post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("db error: %w", err), "", post.ID)
	}

	return post, nil
}

func (r *Repository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	query := postWithAuthor + ` WHERE p.id = $1`

	row := r.q.QueryRowContext(ctx, query, id)
	post, err := scanPost(row)
	if err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("db error: %w", err), "Post", id)
	}
	return post, nil
}

func (r *Repository) GetPosts(ctx context.Context, p models.Pagination) ([]*models.Post, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(postWithAuthor)
	if p.AuthorID != "" {
		args = append(args, p.AuthorID)
		sb.WriteString(` WHERE p.author_id = $1`)
	}
	args = append(args, p.Limit, p.Offset)
	fmt.Fprintf(&sb, ` ORDER BY p.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("db error: %w", err), "", "")
	}
	defer rows.Close()

	posts := make([]*models.Post, 0, max(p.Limit, 0))
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, r.translateError(ctx, fmt.Errorf("scan: %w", err), "", "")
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("rows: %w", err), "", "")
	}

	return posts, nil
}

// UpdatePost resets every column of the row with post.ID. Ownership is the
// caller's concern.
func (r *Repository) UpdatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`UPDATE posts
		    SET title = $2, content = $3, author_id = $4, created_at = $5, updated_at = $6
		  WHERE id = $1
		 `

	res, err := r.q.ExecContext(ctx, query,
		post.ID, post.Title, post.Content, post.OwnerID(), post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("db error: %w", err), "Post", post.ID)
	}
	if err := r.requireAffected(ctx, res, "Post", post.ID); err != nil {
		return nil, err
	}

	return post, nil
}

func (r *Repository) DeletePostByID(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return r.translateError(ctx, fmt.Errorf("db error: %w", err), "Post", id)
	}
	return r.requireAffected(ctx, res, "Post", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.Post, error) {
	var (
		post            models.Post
		authorID        sql.NullString
		authorEmail     sql.NullString
		authorName      sql.NullString
		authorCreatedAt sql.NullTime
	)
	err := s.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &post.CreatedAt, &post.UpdatedAt,
		&authorID, &authorEmail, &authorName, &authorCreatedAt)
	if err != nil {
		return nil, err
	}
	if !authorID.Valid {
		return nil, fmt.Errorf("post %s references missing author %s", post.ID, post.AuthorID)
	}

	post.CreatedAt = post.CreatedAt.UTC()
	post.UpdatedAt = post.UpdatedAt.UTC()

	author := &models.User{
		ID:        authorID.String,
		Email:     authorEmail.String,
		Name:      authorName.String,
		CreatedAt: utc(authorCreatedAt),
	}
	return post.WithAuthor(author), nil
}

func utc(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}
