package sqlite

import (
	"context"
	"sync"
	"testing"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/errors"
)

func TestCreateAndGetReview(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", alice.ID)

	id, err := s.CreateReview(ctx, book.ID, alice.ID, 5, "a classic")
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	got, err := s.GetReview(ctx, id)
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if got.BookID != book.ID || got.UserID != alice.ID {
		t.Errorf("unexpected ownership: %+v", got)
	}
	if got.Rating != 5 {
		t.Errorf("Rating: got %d", got.Rating)
	}
	if got.Comment != "a classic" {
		t.Errorf("Comment: got %q", got.Comment)
	}
}

func TestCreateReview_DuplicatePair(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", alice.ID)

	if _, err := s.CreateReview(ctx, book.ID, alice.ID, 4, ""); err != nil {
		t.Fatalf("first review: %v", err)
	}

	// Same (book, user) pair is rejected by the UNIQUE constraint.
	_, err := s.CreateReview(ctx, book.ID, alice.ID, 2, "changed my mind")
	if !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("expected already-exists, got %v", err)
	}

	// A different user may still review the same book.
	if _, err := s.CreateReview(ctx, book.ID, bob.ID, 3, ""); err != nil {
		t.Errorf("second user's review should succeed: %v", err)
	}
}

func TestCreateReview_ConcurrentDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", alice.ID)

	// Fire concurrent inserts for the same (book, user) pair. Exactly one
	// must win; every loser must see the duplicate error, never a silent
	// second row.
	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateReview(ctx, book.ID, alice.ID, 5, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, duplicates int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, errors.ErrAlreadyExists):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if duplicates != attempts-1 {
		t.Errorf("expected %d duplicates, got %d", attempts-1, duplicates)
	}
}

func TestReviewRatingBounds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", alice.ID)

	// Out-of-range ratings are rejected as validation errors before the
	// CHECK constraint ever sees them.
	for _, rating := range []int{0, 6, -1} {
		_, err := s.CreateReview(ctx, book.ID, alice.ID, rating, "")
		if !errors.Is(err, errors.ErrValidation) {
			t.Errorf("create rating %d: expected validation error, got %v", rating, err)
		}
	}

	id, err := s.CreateReview(ctx, book.ID, alice.ID, domain.MaxRating, "")
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	bad := domain.MaxRating + 1
	err = s.UpdateReview(ctx, id, alice.ID, domain.ReviewUpdate{Rating: &bad})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("update rating %d: expected validation error, got %v", bad, err)
	}
}

func TestUpdateReview_PresenceSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", alice.ID)
	id, err := s.CreateReview(ctx, book.ID, alice.ID, 4, "pretty good")
	if err != nil {
		t.Fatal(err)
	}

	// Nil comment keeps the stored comment.
	rating := 5
	if err := s.UpdateReview(ctx, id, alice.ID, domain.ReviewUpdate{Rating: &rating}); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	got, _ := s.GetReview(ctx, id)
	if got.Rating != 5 || got.Comment != "pretty good" {
		t.Errorf("after rating update: %+v", got)
	}

	// A supplied empty comment clears it - presence, not falsy-coalesce.
	empty := ""
	if err := s.UpdateReview(ctx, id, alice.ID, domain.ReviewUpdate{Comment: &empty}); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	got, _ = s.GetReview(ctx, id)
	if got.Comment != "" {
		t.Errorf("Comment should be cleared, got %q", got.Comment)
	}
	if got.Rating != 5 {
		t.Errorf("Rating should be unchanged, got %d", got.Rating)
	}
}

func TestUpdateReview_NotFoundVsForbidden(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	mallory := mustCreateUser(t, s, "mallory")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", alice.ID)
	id, err := s.CreateReview(ctx, book.ID, alice.ID, 4, "")
	if err != nil {
		t.Fatal(err)
	}

	rating := 1
	if err := s.UpdateReview(ctx, 9999, alice.ID, domain.ReviewUpdate{Rating: &rating}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing review: expected not-found, got %v", err)
	}
	if err := s.UpdateReview(ctx, id, mallory.ID, domain.ReviewUpdate{Rating: &rating}); !errors.Is(err, errors.ErrForbidden) {
		t.Errorf("wrong owner: expected forbidden, got %v", err)
	}
}

func TestDeleteReview_DistinguishableOutcomes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	mallory := mustCreateUser(t, s, "mallory")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", alice.ID)
	id, err := s.CreateReview(ctx, book.ID, alice.ID, 4, "")
	if err != nil {
		t.Fatal(err)
	}

	// Missing review and someone else's review report differently here,
	// unlike book deletion.
	if err := s.DeleteReview(ctx, 9999, alice.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing review: expected not-found, got %v", err)
	}
	if err := s.DeleteReview(ctx, id, mallory.ID); !errors.Is(err, errors.ErrForbidden) {
		t.Errorf("wrong owner: expected forbidden, got %v", err)
	}

	if err := s.DeleteReview(ctx, id, alice.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := s.GetReview(ctx, id); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("review should be gone, got %v", err)
	}
}

func TestAverageRating(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", alice.ID)

	// No reviews yet: average is 0, not an error.
	avg, err := s.AverageRating(ctx, book.ID)
	if err != nil {
		t.Fatalf("AverageRating: %v", err)
	}
	if avg != 0 {
		t.Errorf("empty book average: got %v, want 0", avg)
	}

	if _, err := s.CreateReview(ctx, book.ID, alice.ID, 5, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateReview(ctx, book.ID, bob.ID, 4, ""); err != nil {
		t.Fatal(err)
	}

	avg, err = s.AverageRating(ctx, book.ID)
	if err != nil {
		t.Fatalf("AverageRating: %v", err)
	}
	if avg != 4.5 {
		t.Errorf("average: got %v, want 4.5", avg)
	}
}

func TestListReviewsWithUsernames_Pagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	creator := mustCreateUser(t, s, "creator")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", creator.ID)

	reviewers := []string{"u1", "u2", "u3", "u4", "u5"}
	for i, name := range reviewers {
		u := mustCreateUser(t, s, name)
		if _, err := s.CreateReview(ctx, book.ID, u.ID, (i%5)+1, "comment"); err != nil {
			t.Fatalf("review by %s: %v", name, err)
		}
	}

	// Page 1 of 2.
	page1, err := s.ListReviewsWithUsernames(ctx, book.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListReviewsWithUsernames: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("page 1: expected 2 rows, got %d", len(page1))
	}
	if page1[0].Username != "u1" || page1[1].Username != "u2" {
		t.Errorf("page 1 order: %+v", page1)
	}

	// Page 3 of 2 holds the remainder.
	page3, err := s.ListReviewsWithUsernames(ctx, book.ID, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(page3) != 1 || page3[0].Username != "u5" {
		t.Errorf("page 3: %+v", page3)
	}

	// Past the end: empty, not an error.
	past, err := s.ListReviewsWithUsernames(ctx, book.ID, 2, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(past) != 0 {
		t.Errorf("expected empty page, got %d rows", len(past))
	}
}

func TestDeleteBook_RetainsReviews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	book := mustCreateBook(t, s, "Dune", "Frank Herbert", alice.ID)

	id, err := s.CreateReview(ctx, book.ID, bob.ID, 4, "")
	if err != nil {
		t.Fatal(err)
	}

	// Deleting the book leaves the review row in place (orphan retention).
	if err := s.DeleteBook(ctx, book.ID, alice.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if _, err := s.GetReview(ctx, id); err != nil {
		t.Errorf("review should survive book deletion: %v", err)
	}
}
