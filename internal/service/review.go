package service

import (
	"context"
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

// ReviewService orchestrates review operations.
type ReviewService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store *sqlite.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: logger,
	}
}

// AddReviewRequest contains new review data.
type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// UpdateReviewRequest contains the fields to change on a review. Absent
// fields keep their stored values; a present empty comment clears it.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// AddReview creates a review of a book by the given user. The book must
// exist, and a user may review a book at most once.
func (s *ReviewService) AddReview(ctx context.Context, bookID, userID int64, req AddReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	// Early duplicate check for a clean error path. The UNIQUE(book_id,
	// user_id) constraint is still the authoritative guard; concurrent
	// inserts lose there, not here.
	if _, err := s.store.GetReviewForBookUser(ctx, bookID, userID); err == nil {
		return nil, domainerrors.AlreadyExists("you have already reviewed this book")
	} else if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	id, err := s.store.CreateReview(ctx, bookID, userID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Review added", "review_id", id, "book_id", bookID, "user_id", userID)
	}

	return s.store.GetReview(ctx, id)
}

// UpdateReview applies a partial update to a review the user wrote.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, userID int64, req UpdateReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	upd := domain.ReviewUpdate{
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if upd.Empty() {
		return nil, domainerrors.Validation("no fields to update")
	}

	if err := s.store.UpdateReview(ctx, reviewID, userID, upd); err != nil {
		return nil, err
	}

	return s.store.GetReview(ctx, reviewID)
}

// ListReviews returns one page of a book's reviews with usernames.
// Out-of-range page and limit fall back to the shared defaults.
func (s *ReviewService) ListReviews(ctx context.Context, bookID int64, page, limit int) ([]domain.ReviewWithUsername, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.store.ListReviewsWithUsernames(ctx, bookID, limit, (page-1)*limit)
}

// AverageRating returns a book's mean rating, 0 when it has no reviews.
func (s *ReviewService) AverageRating(ctx context.Context, bookID int64) (float64, error) {
	return s.store.AverageRating(ctx, bookID)
}

// DeleteReview removes a review the user wrote.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, userID int64) error {
	if err := s.store.DeleteReview(ctx, reviewID, userID); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("Review deleted", "review_id", reviewID, "user_id", userID)
	}
	return nil
}
