package domain

import (
	"strings"
	"time"
)

// Book is a registered book. CreatedBy is set once at creation and never
// changes; only that user may update or delete the book.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookUpdate carries a partial book update. Empty strings mean "keep the
// existing value": an empty title can never overwrite a real one. Contrast
// with ReviewUpdate, which uses pointer presence.
type BookUpdate struct {
	Title  string
	Author string
	Genre  string
}

// Empty reports whether no field was supplied at all.
func (u BookUpdate) Empty() bool {
	return strings.TrimSpace(u.Title) == "" &&
		strings.TrimSpace(u.Author) == "" &&
		strings.TrimSpace(u.Genre) == ""
}
