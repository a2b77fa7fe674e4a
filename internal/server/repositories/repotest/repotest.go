// Package repotest is a behavioural test suite that every
// repositories.Repository implementation must pass.
//
// The memory adapter always runs it. The postgres and mongo adapters run it
// against a live server when POSTBOARD_TEST_POSTGRES_DSN or
// POSTBOARD_TEST_MONGO_URI is set, and skip otherwise.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"github.com/dmitrijs2005/postboard/internal/server/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, initialised, empty repository for one subtest.
type Factory func(t *testing.T) repositories.Repository

// Run executes the suite against repositories produced by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, repo repositories.Repository)
	}{
		{"CreateAndGetUser", testCreateAndGetUser},
		{"DuplicateEmailConflict", testDuplicateEmailConflict},
		{"ConcurrentDuplicateEmail", testConcurrentDuplicateEmail},
		{"MissingIsNotFound", testMissingIsNotFound},
		{"MalformedIDIsNotFound", testMalformedIDIsNotFound},
		{"DeleteUser", testDeleteUser},
		{"PostWithAuthor", testPostWithAuthor},
		{"CreatePostUnknownAuthor", testCreatePostUnknownAuthor},
		{"GetPostsOrderAndLimit", testGetPostsOrderAndLimit},
		{"GetPostsAuthorFilter", testGetPostsAuthorFilter},
		{"UpdatePost", testUpdatePost},
		{"DeletePost", testDeletePost},
		{"InitIdempotent", testInitIdempotent},
		{"Clear", testClear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newRepo(t))
		})
	}
}

func mustCreateUser(t *testing.T, repo repositories.Repository, email string) *models.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), models.NewUser(email, "Name "+email, "$argon2id$hash"))
	require.NoError(t, err)
	return u
}

func mustCreatePost(t *testing.T, repo repositories.Repository, authorID, title string) *models.Post {
	t.Helper()
	p, err := repo.CreatePost(context.Background(), models.NewPost(authorID, title, "content of "+title))
	require.NoError(t, err)
	return p
}

func testCreateAndGetUser(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	created := mustCreateUser(t, repo, "a@x.com")

	byEmail, err := repo.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	byID, err := repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)

	for _, got := range []*models.User{byEmail, byID} {
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Email, got.Email)
		assert.Equal(t, created.Name, got.Name)
		assert.NotEmpty(t, got.PasswordHash)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", created.CreatedAt, got.CreatedAt)
	}
}

func testDuplicateEmailConflict(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	mustCreateUser(t, repo, "dup@x.com")

	_, err := repo.CreateUser(ctx, models.NewUser("dup@x.com", "Other", "hash"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	assert.Contains(t, err.Error(), "dup@x.com")
}

func testConcurrentDuplicateEmail(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateUser(ctx, models.NewUser("race@x.com", fmt.Sprintf("U%d", i), "hash"))
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func testMissingIsNotFound(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	missing := models.NewID()

	_, err := repo.GetUserByID(ctx, missing)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "user by id: %v", err)

	_, err = repo.GetUserByEmail(ctx, "nobody@x.com")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "user by email: %v", err)

	_, err = repo.GetPostByID(ctx, missing)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "post by id: %v", err)

	assert.True(t, apperr.Is(repo.DeleteUserByID(ctx, missing), apperr.KindNotFound))
	assert.True(t, apperr.Is(repo.DeletePostByID(ctx, missing), apperr.KindNotFound))

	_, err = repo.UpdatePost(ctx, models.NewPost(models.NewID(), "t", "c"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "update: %v", err)
}

func testMalformedIDIsNotFound(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	const bad = "not-a-uuid"

	_, err := repo.GetUserByID(ctx, bad)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "user by id: %v", err)

	_, err = repo.GetPostByID(ctx, bad)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "post by id: %v", err)

	err = repo.DeleteUserByID(ctx, bad)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "delete user: %v", err)

	err = repo.DeletePostByID(ctx, bad)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "delete post: %v", err)

	p := models.NewPost(models.NewID(), "t", "c")
	p.ID = bad
	_, err = repo.UpdatePost(ctx, p)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "update: %v", err)
}

func testDeleteUser(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	u := mustCreateUser(t, repo, "gone@x.com")

	require.NoError(t, repo.DeleteUserByID(ctx, u.ID))

	_, err := repo.GetUserByID(ctx, u.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	mustCreateUser(t, repo, "gone@x.com")
}

func testPostWithAuthor(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	u := mustCreateUser(t, repo, "author@x.com")
	p := mustCreatePost(t, repo, u.ID, "hello")

	got, err := repo.GetPostByID(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, p.Content, got.Content)
	assert.Empty(t, got.AuthorID)
	require.NotNil(t, got.Author)
	assert.Equal(t, u.ID, got.Author.ID)
	assert.Equal(t, u.Email, got.Author.Email)
	assert.Equal(t, u.Name, got.Author.Name)
	assert.Empty(t, got.Author.PasswordHash)
	assert.Equal(t, u.ID, got.OwnerID())
}

func testCreatePostUnknownAuthor(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	u := mustCreateUser(t, repo, "real@x.com")
	mustCreatePost(t, repo, u.ID, "kept")

	_, err := repo.CreatePost(ctx, models.NewPost(models.NewID(), "orphan", "c"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal), "got %v", err)

	page, err := repo.GetPosts(ctx, models.Pagination{Limit: 50})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "kept", page[0].Title)
}

func testGetPostsOrderAndLimit(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	u := mustCreateUser(t, repo, "many@x.com")
	for i := 0; i < 7; i++ {
		mustCreatePost(t, repo, u.ID, fmt.Sprintf("post-%d", i))
		time.Sleep(time.Millisecond)
	}

	page, err := repo.GetPosts(ctx, models.Pagination{Limit: 5})
	require.NoError(t, err)
	require.Len(t, page, 5)
	for i := 1; i < len(page); i++ {
		assert.Greater(t, page[i-1].ID, page[i].ID, "ids must be strictly descending")
	}
	assert.Equal(t, "post-6", page[0].Title)
	for _, p := range page {
		require.NotNil(t, p.Author)
		assert.Equal(t, u.ID, p.Author.ID)
	}

	rest, err := repo.GetPosts(ctx, models.Pagination{Limit: 5, Offset: 5})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "post-1", rest[0].Title)

	empty, err := repo.GetPosts(ctx, models.Pagination{Limit: 5, Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testGetPostsAuthorFilter(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	a := mustCreateUser(t, repo, "a@x.com")
	b := mustCreateUser(t, repo, "b@x.com")
	for i := 0; i < 3; i++ {
		mustCreatePost(t, repo, a.ID, fmt.Sprintf("a-%d", i))
		mustCreatePost(t, repo, b.ID, fmt.Sprintf("b-%d", i))
	}

	page, err := repo.GetPosts(ctx, models.Pagination{Limit: 50, AuthorID: b.ID})
	require.NoError(t, err)
	require.Len(t, page, 3)
	for _, p := range page {
		assert.Equal(t, b.ID, p.OwnerID())
	}
}

func testUpdatePost(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	u := mustCreateUser(t, repo, "editor@x.com")
	p := mustCreatePost(t, repo, u.ID, "draft")

	p.Title = "final"
	p.Content = "rewritten"
	p.UpdatedAt = models.Now().Add(time.Minute)

	updated, err := repo.UpdatePost(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)

	got, err := repo.GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "rewritten", got.Content)
	assert.True(t, p.UpdatedAt.Equal(got.UpdatedAt))
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, u.ID, got.OwnerID())
}

func testDeletePost(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	u := mustCreateUser(t, repo, "del@x.com")
	p := mustCreatePost(t, repo, u.ID, "bye")

	require.NoError(t, repo.DeletePostByID(ctx, p.ID))

	_, err := repo.GetPostByID(ctx, p.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(repo.DeletePostByID(ctx, p.ID), apperr.KindNotFound))
}

func testInitIdempotent(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))
	require.NoError(t, repo.Init(ctx))
	require.NoError(t, repo.CheckHealth(ctx))

	mustCreateUser(t, repo, "idem@x.com")
	_, err := repo.CreateUser(ctx, models.NewUser("idem@x.com", "x", "h"))
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func testClear(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()
	u := mustCreateUser(t, repo, "wipe@x.com")
	mustCreatePost(t, repo, u.ID, "wipe")

	require.NoError(t, repositories.Clear(ctx, repo))

	_, err := repo.GetUserByID(ctx, u.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	page, err := repo.GetPosts(ctx, models.Pagination{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page)
}
