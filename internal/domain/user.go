// Package domain contains the core data types for the Bookshelf server.
package domain

import "time"

// User is a registered account. Usernames are unique and immutable after
// creation; the password is stored only as an argon2id hash.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated user id/username pair derived from an
// access token. It is what handlers see after the auth middleware runs.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
