package sqlite

import (
	"context"
	"testing"

	"github.com/bookshelfapp/bookshelf-server/internal/errors"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "$argon2id$hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected a non-zero assigned id")
	}

	got, err := s.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username: got %q, want %q", got.Username, "alice")
	}
	if got.PasswordHash != "$argon2id$hash" {
		t.Errorf("PasswordHash: got %q", got.PasswordHash)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt: expected non-zero")
	}
}

func TestCreateUser_SequentialIDs(t *testing.T) {
	s := newTestStore(t)

	u1 := mustCreateUser(t, s, "first")
	u2 := mustCreateUser(t, s, "second")

	if u2.ID <= u1.ID {
		t.Errorf("expected increasing ids, got %d then %d", u1.ID, u2.ID)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "alice")

	_, err := s.CreateUser(ctx, "alice", "$argon2id$other")
	if err == nil {
		t.Fatal("expected error for duplicate username")
	}
	if !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("expected already-exists error, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), 9999)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := mustCreateUser(t, s, "bob")

	got, err := s.GetUserByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID: got %d, want %d", got.ID, created.ID)
	}

	// Usernames are compared exactly.
	if _, err := s.GetUserByUsername(ctx, "BOB"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not-found for different case, got %v", err)
	}
}
