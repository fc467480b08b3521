package entities

import (
	"time"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Actor is the authenticated caller of an operation.
// A nil *Actor is an anonymous caller.
type Actor struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// AsAuthor returns the author stamp recorded on entities the actor creates
func (a *Actor) AsAuthor() Author {
	return Author{UserID: a.UserID, Username: a.Username}
}

// Author is the owner reference stored on parks, comments and reviews.
// Username is copied at creation time and is not kept in sync with the user.
type Author struct {
	UserID   string `json:"user_id" db:"author_id"`
	Username string `json:"username" db:"author_username"`
}
