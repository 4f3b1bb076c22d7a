package service

import (
	"context"
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

// testEnv bundles the services under test over a shared temporary store.
type testEnv struct {
	store   *sqlite.Store
	auth    *AuthService
	books   *BookService
	reviews *ReviewService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	tokens, err := auth.NewTokenService(hex.EncodeToString(key), time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	return &testEnv{
		store:   s,
		auth:    NewAuthService(s, tokens, logger),
		books:   NewBookService(s, logger),
		reviews: NewReviewService(s, logger),
	}
}

// signupTestUser registers a user through the auth service and returns it.
func signupTestUser(t *testing.T, env *testEnv, username string) *domain.User {
	t.Helper()

	resp, err := env.auth.Signup(context.Background(), SignupRequest{
		Username: username,
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)
	return resp.User
}

// createTestBook adds a book owned by the given user.
func createTestBook(t *testing.T, env *testEnv, userID int64, title, author string) *domain.Book {
	t.Helper()

	book, err := env.books.CreateBook(context.Background(), userID, CreateBookRequest{
		Title:  title,
		Author: author,
	})
	require.NoError(t, err)
	return book
}
