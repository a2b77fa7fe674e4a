package models

import "time"

// Post is an article authored by a User.
//
// Author is a read-side attachment filled in only by queries that join the
// users table/collection. It is never written back to storage. When Author is
// set, AuthorID is cleared so the reference is serialized once.
type Post struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	AuthorID  string    `json:"authorId,omitempty" db:"author_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Author    *User     `json:"author,omitempty" db:"-"`
}

// NewPost builds a Post owned by authorID.
func NewPost(authorID, title, content string) *Post {
	now := Now()
	return &Post{
		ID:        NewID(),
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithAuthor attaches author (redacted) and clears AuthorID.
func (p *Post) WithAuthor(author *User) *Post {
	p.Author = author.Redacted()
	p.AuthorID = ""
	return p
}

// OwnerID returns the author's id whether or not the author is attached.
func (p *Post) OwnerID() string {
	if p.Author != nil {
		return p.Author.ID
	}
	return p.AuthorID
}

// Pagination selects a page of posts, newest first. Bounds are checked by the
// caller before the value reaches storage.
type Pagination struct {
	Limit    int64  `json:"limit" validate:"min=1,max=50"`
	Offset   int64  `json:"offset" validate:"min=0"`
	AuthorID string `json:"authorId,omitempty" validate:"omitempty,uuid"`
}
