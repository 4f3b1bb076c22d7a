package domain

import "time"

// Rating bounds for reviews, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is within the allowed 1-5 range.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Review is a user's review of a book. At most one review exists per
// (book, user) pair; only the authoring user may update or delete it.
type Review struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewUpdate carries a partial review update. Unlike BookUpdate this uses
// explicit presence: a non-nil Comment pointing at "" clears the comment,
// while a nil field keeps the stored value.
type ReviewUpdate struct {
	Rating  *int
	Comment *string
}

// Empty reports whether no field was supplied.
func (u ReviewUpdate) Empty() bool {
	return u.Rating == nil && u.Comment == nil
}

// ReviewWithUsername is a review joined with the authoring user's username,
// as returned by paginated review listings.
type ReviewWithUsername struct {
	ID       int64  `json:"id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Username string `json:"username"`
}

// BookDetail is the composed answer to "get book detail": the book itself,
// its mean rating rounded to two decimals, and one page of reviews.
type BookDetail struct {
	Book          *Book                `json:"book"`
	AverageRating float64              `json:"average_rating"`
	Page          int                  `json:"page"`
	Limit         int                  `json:"limit"`
	Reviews       []ReviewWithUsername `json:"reviews"`
}
