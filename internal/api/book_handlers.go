package api

import (
	"encoding/json/v2"
	"net/http"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// handleCreateBook adds a book owned by the caller.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())
	if identity == nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req service.CreateBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.CreateBook(r.Context(), identity.UserID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleListBooks returns the caller's books.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())
	if identity == nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	books, err := s.bookService.ListBooks(r.Context(), identity.UserID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleListAllBooks returns every book regardless of creator.
func (s *Server) handleListAllBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListAllBooks(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleGetBook returns a book with its average rating and a page of reviews.
// Pagination comes from the page and limit query parameters.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := urlParamID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	page := queryInt(r, "page", service.DefaultPage)
	limit := queryInt(r, "limit", service.DefaultLimit)

	detail, err := s.bookService.GetBookDetail(r.Context(), bookID, page, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, detail, s.logger)
}

// handleUpdateBook applies a partial update to a book the caller owns.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())
	if identity == nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	bookID, ok := urlParamID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	var req service.UpdateBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.UpdateBook(r.Context(), bookID, identity.UserID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleDeleteBook removes a book the caller owns.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())
	if identity == nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	bookID, ok := urlParamID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	if err := s.bookService.DeleteBook(r.Context(), bookID, identity.UserID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleSearchBooks finds books by title or author substring. Public.
func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	books, err := s.bookService.SearchBooks(r.Context(), query)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}
