package models

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser("a@x.com", "A", "hash")

	id, err := uuid.Parse(u.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, time.UTC, u.CreatedAt.Location())
	assert.Equal(t, u.CreatedAt, u.CreatedAt.Truncate(time.Millisecond))
}

func TestUser_Redacted(t *testing.T) {
	u := NewUser("a@x.com", "A", "hash")
	r := u.Redacted()

	assert.Empty(t, r.PasswordHash)
	assert.Equal(t, "hash", u.PasswordHash, "original must be untouched")
	assert.Equal(t, u.ID, r.ID)

	var nilUser *User
	assert.Nil(t, nilUser.Redacted())
}

func TestNewID_SortsByCreation(t *testing.T) {
	a := NewID()
	time.Sleep(2 * time.Millisecond)
	b := NewID()
	assert.Less(t, a, b)
}

func TestPost_WithAuthor(t *testing.T) {
	author := NewUser("a@x.com", "A", "hash")
	p := NewPost(author.ID, "t", "c")
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Equal(t, author.ID, p.OwnerID())

	p.WithAuthor(author)
	assert.Empty(t, p.AuthorID)
	require.NotNil(t, p.Author)
	assert.Empty(t, p.Author.PasswordHash)
	assert.Equal(t, author.ID, p.OwnerID())
}

func TestPagination_Validate(t *testing.T) {
	assert.NoError(t, Pagination{Limit: 1}.Validate())
	assert.NoError(t, Pagination{Limit: 50, Offset: 100, AuthorID: NewID()}.Validate())

	tests := []struct {
		name  string
		p     Pagination
		field string
	}{
		{"zero limit", Pagination{Limit: 0}, "limit"},
		{"limit too high", Pagination{Limit: 51}, "limit"},
		{"negative offset", Pagination{Limit: 10, Offset: -1}, "offset"},
		{"bad author", Pagination{Limit: 10, AuthorID: "nope"}, "authorId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))

			var e *apperr.Error
			require.ErrorAs(t, err, &e)
			assert.Contains(t, e.Details, tt.field)
		})
	}
}
