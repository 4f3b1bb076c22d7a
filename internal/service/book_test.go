package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

func TestCreateBook(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")

	book, err := env.books.CreateBook(ctx, alice.ID, CreateBookRequest{
		Title:  "Neuromancer",
		Author: "William Gibson",
		Genre:  "sci-fi",
	})
	require.NoError(t, err)

	assert.NotZero(t, book.ID)
	assert.Equal(t, "Neuromancer", book.Title)
	assert.Equal(t, alice.ID, book.CreatedBy)
}

func TestCreateBook_Validation(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")

	_, err := env.books.CreateBook(ctx, alice.ID, CreateBookRequest{Author: "William Gibson"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "missing title: got %v", err)

	_, err = env.books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Neuromancer"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "missing author: got %v", err)
}

func TestListBooks_ScopedToCreator(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")
	bob := signupTestUser(t, env, "bob")

	createTestBook(t, env, alice.ID, "Dune", "Frank Herbert")
	createTestBook(t, env, bob.ID, "Neuromancer", "William Gibson")

	mine, err := env.books.ListBooks(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Dune", mine[0].Title)

	all, err := env.books.ListAllBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateBook_PartialAndOwnership(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")
	mallory := signupTestUser(t, env, "mallory")
	book := createTestBook(t, env, alice.ID, "Dune", "Frank Herbert")

	// Only the title changes; author and genre survive.
	updated, err := env.books.UpdateBook(ctx, book.ID, alice.ID, UpdateBookRequest{Title: "Dune Messiah"})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, "Frank Herbert", updated.Author)

	_, err = env.books.UpdateBook(ctx, book.ID, mallory.ID, UpdateBookRequest{Title: "Hijacked"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden), "got %v", err)

	_, err = env.books.UpdateBook(ctx, 9999, alice.ID, UpdateBookRequest{Title: "Ghost"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)
}

func TestUpdateBook_NoFields(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")
	book := createTestBook(t, env, alice.ID, "Dune", "Frank Herbert")

	// An update supplying nothing (or only whitespace) is rejected before
	// it reaches the store; the row is untouched.
	_, err := env.books.UpdateBook(ctx, book.ID, alice.ID, UpdateBookRequest{})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)

	_, err = env.books.UpdateBook(ctx, book.ID, alice.ID, UpdateBookRequest{Title: "   "})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)

	unchanged, err := env.books.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, book.UpdatedAt.Equal(unchanged.UpdatedAt), "updated_at must not move on a rejected update")
}

func TestDeleteBook(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")
	mallory := signupTestUser(t, env, "mallory")
	book := createTestBook(t, env, alice.ID, "Dune", "Frank Herbert")

	// Non-owners get not-found, same as a missing book.
	err := env.books.DeleteBook(ctx, book.ID, mallory.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)

	require.NoError(t, env.books.DeleteBook(ctx, book.ID, alice.ID))

	_, err = env.books.GetBook(ctx, book.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestGetBookDetail(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")
	bob := signupTestUser(t, env, "bob")
	carol := signupTestUser(t, env, "carol")
	book := createTestBook(t, env, alice.ID, "Dune", "Frank Herbert")

	_, err := env.reviews.AddReview(ctx, book.ID, bob.ID, AddReviewRequest{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	_, err = env.reviews.AddReview(ctx, book.ID, carol.ID, AddReviewRequest{Rating: 4})
	require.NoError(t, err)

	detail, err := env.books.GetBookDetail(ctx, book.ID, 1, 5)
	require.NoError(t, err)

	assert.Equal(t, book.ID, detail.Book.ID)
	assert.InDelta(t, 4.5, detail.AverageRating, 0.001)
	assert.Len(t, detail.Reviews, 2)
	assert.Equal(t, "bob", detail.Reviews[0].Username)
}

func TestGetBookDetail_AverageRounding(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")
	book := createTestBook(t, env, alice.ID, "Dune", "Frank Herbert")

	// Ratings 5, 4, 4 average to 4.333..., rounded to 4.33.
	for i, rating := range []int{5, 4, 4} {
		u := signupTestUser(t, env, "reviewer"+string(rune('a'+i)))
		_, err := env.reviews.AddReview(ctx, book.ID, u.ID, AddReviewRequest{Rating: rating})
		require.NoError(t, err)
	}

	detail, err := env.books.GetBookDetail(ctx, book.ID, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 4.33, detail.AverageRating)
}

func TestGetBookDetail_Defaults(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")
	book := createTestBook(t, env, alice.ID, "Dune", "Frank Herbert")

	// Out-of-range paging falls back to page 1, limit 5.
	detail, err := env.books.GetBookDetail(ctx, book.ID, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, detail.Page)
	assert.Equal(t, DefaultLimit, detail.Limit)
	assert.Zero(t, detail.AverageRating, "no reviews means average 0")
	assert.Empty(t, detail.Reviews)
}

func TestGetBookDetail_Pagination(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")
	book := createTestBook(t, env, alice.ID, "Dune", "Frank Herbert")

	reviewers := []string{"u1", "u2", "u3"}
	for _, name := range reviewers {
		u := signupTestUser(t, env, name)
		_, err := env.reviews.AddReview(ctx, book.ID, u.ID, AddReviewRequest{Rating: 3})
		require.NoError(t, err)
	}

	page2, err := env.books.GetBookDetail(ctx, book.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2.Reviews, 1)
	assert.Equal(t, "u3", page2.Reviews[0].Username)
}

func TestSearchBooks(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	alice := signupTestUser(t, env, "alice")
	createTestBook(t, env, alice.ID, "Dune", "Frank Herbert")
	createTestBook(t, env, alice.ID, "Sandworms", "D. Duneworth")
	createTestBook(t, env, alice.ID, "Neuromancer", "William Gibson")

	// Matches title or author, case-insensitively.
	hits, err := env.books.SearchBooks(ctx, "dune")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = env.books.SearchBooks(ctx, "GIBSON")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Neuromancer", hits[0].Title)

	_, err = env.books.SearchBooks(ctx, "   ")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "blank query: got %v", err)
}
