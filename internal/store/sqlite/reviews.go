package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

const reviewColumns = `id, book_id, user_id, rating, comment, created_at, updated_at`

// scanReview scans a sql.Row (or sql.Rows via its Scan method) into a domain.Review.
func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var r domain.Review
	var createdAt, updatedAt string

	err := scanner.Scan(&r.ID, &r.BookID, &r.UserID, &r.Rating, &r.Comment, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse review created_at: %w", err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse review updated_at: %w", err)
	}

	return &r, nil
}

// CreateReview inserts a new review and returns its id.
//
// The UNIQUE(book_id, user_id) constraint is the source of truth for the
// one-review-per-user-per-book rule: callers may pre-check, but a concurrent
// duplicate insert is rejected here and surfaced as an already-exists error.
func (s *Store) CreateReview(ctx context.Context, bookID, userID int64, rating int, comment string) (int64, error) {
	// Guard the CHECK constraint so an out-of-range rating is a validation
	// error, not an opaque constraint failure.
	if !domain.ValidRating(rating) {
		return 0, domainerrors.Validation("rating must be between 1 and 5")
	}

	now := formatTime(nowUTC())

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (book_id, user_id, rating, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		bookID, userID, rating, comment, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domainerrors.AlreadyExists("you have already reviewed this book")
		}
		if isForeignKeyViolation(err) {
			return 0, domainerrors.NotFound("user not found")
		}
		return 0, fmt.Errorf("insert review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("review insert id: %w", err)
	}
	return id, nil
}

// GetReview retrieves a review by id.
func (s *Store) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)

	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFound("review not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

// GetReviewForBookUser retrieves the review a user wrote for a book, if any.
func (s *Store) GetReviewForBookUser(ctx context.Context, bookID, userID int64) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id = ? AND user_id = ?`, bookID, userID)

	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFound("review not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get review for book/user: %w", err)
	}
	return r, nil
}

// UpdateReview applies a partial update to a review owned by requesterID.
//
// Presence semantics, not falsy-coalesce: a nil field keeps the stored
// value, while a pointer to the empty string clears the comment. The update
// is one conditional statement scoped by id AND author; on zero rows a probe
// distinguishes a missing review from someone else's.
func (s *Store) UpdateReview(ctx context.Context, reviewID, requesterID int64, upd domain.ReviewUpdate) error {
	var rating sql.NullInt64
	if upd.Rating != nil {
		if !domain.ValidRating(*upd.Rating) {
			return domainerrors.Validation("rating must be between 1 and 5")
		}
		rating = sql.NullInt64{Int64: int64(*upd.Rating), Valid: true}
	}
	var comment sql.NullString
	if upd.Comment != nil {
		comment = sql.NullString{String: *upd.Comment, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE reviews
		SET rating     = COALESCE(?, rating),
		    comment    = COALESCE(?, comment),
		    updated_at = ?
		WHERE id = ? AND user_id = ?`,
		rating, comment, formatTime(nowUTC()), reviewID, requesterID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var userID int64
	err = s.db.QueryRowContext(ctx, `SELECT user_id FROM reviews WHERE id = ?`, reviewID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domainerrors.NotFound("review not found")
	}
	if err != nil {
		return fmt.Errorf("update review probe: %w", err)
	}
	return domainerrors.Forbidden("you can only update your own reviews")
}

// DeleteReview deletes a review owned by requesterID.
//
// Unlike book deletion, missing and not-owned are reported distinctly.
func (s *Store) DeleteReview(ctx context.Context, reviewID, requesterID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = ? AND user_id = ?`, reviewID, requesterID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var userID int64
	err = s.db.QueryRowContext(ctx, `SELECT user_id FROM reviews WHERE id = ?`, reviewID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domainerrors.NotFound("review not found")
	}
	if err != nil {
		return fmt.Errorf("delete review probe: %w", err)
	}
	return domainerrors.Forbidden("you can only delete your own reviews")
}

// AverageRating computes the mean rating for a book. A book with no reviews
// has an average of 0.
func (s *Store) AverageRating(ctx context.Context, bookID int64) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT AVG(rating) FROM reviews WHERE book_id = ?`, bookID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// ListReviewsWithUsernames returns one page of a book's reviews joined with
// the authoring user's username, ordered by review id so pages are stable.
func (s *Store) ListReviewsWithUsernames(ctx context.Context, bookID int64, limit, offset int) ([]domain.ReviewWithUsername, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reviews.id, reviews.rating, reviews.comment, users.username
		FROM reviews
		JOIN users ON reviews.user_id = users.id
		WHERE reviews.book_id = ?
		ORDER BY reviews.id
		LIMIT ? OFFSET ?`,
		bookID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.ReviewWithUsername{}
	for rows.Next() {
		var r domain.ReviewWithUsername
		if err := rows.Scan(&r.ID, &r.Rating, &r.Comment, &r.Username); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
