package mongo

import (
	"time"

	"github.com/dmitrijs2005/postboard/internal/server/models"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"password,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func newUserDocument(u *models.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (d userDocument) model() *models.User {
	return &models.User{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type postDocument struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	AuthorID  string    `bson:"authorId"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func newPostDocument(p *models.Post) postDocument {
	return postDocument{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.OwnerID(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// postView is one result of the author pipeline: authorId is projected away
// and author holds the looked-up user, or nil if none matched.
type postView struct {
	ID        string        `bson:"_id"`
	Title     string        `bson:"title"`
	Content   string        `bson:"content"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
	Author    *userDocument `bson:"author,omitempty"`
}

func (v postView) model() *models.Post {
	p := &models.Post{
		ID:        v.ID,
		Title:     v.Title,
		Content:   v.Content,
		CreatedAt: v.CreatedAt.UTC(),
		UpdatedAt: v.UpdatedAt.UTC(),
	}
	return p.WithAuthor(v.Author.model())
}
