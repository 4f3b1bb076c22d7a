package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// handleAddReview creates the caller's review of a book.
func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
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

	var req service.AddReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	review, err := s.reviewService.AddReview(r.Context(), bookID, identity.UserID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, review, s.logger)
}

// handleUpdateReview applies a partial update to a review the caller wrote.
func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())
	if identity == nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	reviewID, ok := urlParamID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid review ID", s.logger)
		return
	}

	var req service.UpdateReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	review, err := s.reviewService.UpdateReview(r.Context(), reviewID, identity.UserID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, review, s.logger)
}

// handleDeleteReview removes a review the caller wrote.
func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())
	if identity == nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	reviewID, ok := urlParamID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid review ID", s.logger)
		return
	}

	if err := s.reviewService.DeleteReview(r.Context(), reviewID, identity.UserID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
