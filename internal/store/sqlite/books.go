package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, author, genre, created_by, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book
	var createdAt, updatedAt string

	err := scanner.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse book created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse book updated_at: %w", err)
	}

	return &b, nil
}

// queryBooks runs a query expected to yield bookColumns rows.
func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CreateBook inserts a new book and returns it with the assigned id.
func (s *Store) CreateBook(ctx context.Context, title, author, genre string, createdBy int64) (*domain.Book, error) {
	now := nowUTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO books (title, author, genre, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		title, author, genre, createdBy, formatTime(now), formatTime(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domainerrors.NotFound("creator not found")
		}
		return nil, fmt.Errorf("insert book: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("book insert id: %w", err)
	}

	return &domain.Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Genre:     genre,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetBook retrieves a book by id.
func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFound("book not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// ListBooksByCreator returns all books created by the given user.
func (s *Store) ListBooksByCreator(ctx context.Context, creatorID int64) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE created_by = ? ORDER BY id`, creatorID)
}

// ListAllBooks returns every book.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

// UpdateBook applies a partial update to a book owned by requesterID.
//
// The update is a single conditional statement scoped by id AND creator, so
// a concurrent delete cannot slip between an ownership check and the write.
// Empty fields keep their stored value (NULLIF collapses them before
// COALESCE picks the old column). On zero rows affected a follow-up probe
// distinguishes "no such book" from "someone else's book".
func (s *Store) UpdateBook(ctx context.Context, bookID, requesterID int64, upd domain.BookUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books
		SET title      = COALESCE(NULLIF(?, ''), title),
		    author     = COALESCE(NULLIF(?, ''), author),
		    genre      = COALESCE(NULLIF(?, ''), genre),
		    updated_at = ?
		WHERE id = ? AND created_by = ?`,
		upd.Title, upd.Author, upd.Genre, formatTime(nowUTC()), bookID, requesterID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update book rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing matched: work out which failure to report.
	var createdBy int64
	err = s.db.QueryRowContext(ctx, `SELECT created_by FROM books WHERE id = ?`, bookID).Scan(&createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		return domainerrors.NotFound("book not found")
	}
	if err != nil {
		return fmt.Errorf("update book probe: %w", err)
	}
	return domainerrors.Forbidden("you are not authorized to update this book")
}

// DeleteBook deletes a book owned by requesterID.
//
// The delete is scoped by id AND creator in one statement; when no row
// matches, the caller cannot tell a missing book from someone else's book.
// That ambiguity is deliberate and differs from review deletion.
func (s *Store) DeleteBook(ctx context.Context, bookID, requesterID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM books WHERE id = ? AND created_by = ?`, bookID, requesterID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book rows affected: %w", err)
	}
	if affected == 0 {
		return domainerrors.NotFound("book not found or not authorized to delete")
	}
	return nil
}

// SearchBooks returns books whose title or author contains the query,
// case-insensitively.
func (s *Store) SearchBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE LOWER(title) LIKE ? OR LOWER(author) LIKE ?
		ORDER BY id`,
		pattern, pattern)
}
