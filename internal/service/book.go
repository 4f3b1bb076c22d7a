package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

// Pagination defaults for listing reviews on a book's detail view.
const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
)

// BookService orchestrates book operations.
type BookService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *sqlite.Store, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		logger: logger,
	}
}

// CreateBookRequest contains new book data.
type CreateBookRequest struct {
	Title  string `json:"title" validate:"required,max=500"`
	Author string `json:"author" validate:"required,max=500"`
	Genre  string `json:"genre" validate:"max=100"`
}

// UpdateBookRequest contains the fields to change on a book. Empty
// strings leave the stored value untouched.
type UpdateBookRequest struct {
	Title  string `json:"title" validate:"max=500"`
	Author string `json:"author" validate:"max=500"`
	Genre  string `json:"genre" validate:"max=100"`
}

// CreateBook adds a book owned by the given user.
func (s *BookService) CreateBook(ctx context.Context, userID int64, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.CreateBook(ctx, req.Title, req.Author, req.Genre, userID)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Book created", "book_id", book.ID, "user_id", userID, "title", book.Title)
	}
	return book, nil
}

// GetBook retrieves a single book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// ListBooks returns the books created by the given user.
func (s *BookService) ListBooks(ctx context.Context, userID int64) ([]*domain.Book, error) {
	return s.store.ListBooksByCreator(ctx, userID)
}

// ListAllBooks returns every book regardless of creator.
func (s *BookService) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.store.ListAllBooks(ctx)
}

// GetBookDetail returns a book together with its average rating and a
// page of reviews. page and limit fall back to defaults when out of range.
func (s *BookService) GetBookDetail(ctx context.Context, bookID int64, page, limit int) (*domain.BookDetail, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	avg, err := s.store.AverageRating(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}

	offset := (page - 1) * limit
	reviews, err := s.store.ListReviewsWithUsernames(ctx, bookID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return &domain.BookDetail{
		Book:          book,
		AverageRating: math.Round(avg*100) / 100,
		Page:          page,
		Limit:         limit,
		Reviews:       reviews,
	}, nil
}

// UpdateBook applies a partial update to a book the user owns.
// Empty request fields keep their stored values.
func (s *BookService) UpdateBook(ctx context.Context, bookID, userID int64, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	upd := domain.BookUpdate{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
	}
	if upd.Empty() {
		return nil, domainerrors.Validation("no fields to update")
	}
	if err := s.store.UpdateBook(ctx, bookID, userID, upd); err != nil {
		return nil, err
	}

	return s.store.GetBook(ctx, bookID)
}

// DeleteBook removes a book the user owns. Reviews of the book are
// kept; they simply no longer resolve to a book.
func (s *BookService) DeleteBook(ctx context.Context, bookID, userID int64) error {
	if err := s.store.DeleteBook(ctx, bookID, userID); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("Book deleted", "book_id", bookID, "user_id", userID)
	}
	return nil
}

// SearchBooks finds books whose title or author contains the query,
// case-insensitively.
func (s *BookService) SearchBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.Validation("search query is required")
	}
	return s.store.SearchBooks(ctx, query)
}
