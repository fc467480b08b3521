package entities

import "time"

const (
	// MinRating is the lowest star rating a review may carry
	MinRating = 1
	// MaxRating is the highest star rating a review may carry
	MaxRating = 5
)

// Review is a star rating of a park, at most one per user and park
type Review struct {
	ID        string    `json:"id" db:"id"`
	ParkID    string    `json:"park_id" db:"park_id"`
	Rating    int       `json:"rating" db:"rating"` // 1-5
	Text      string    `json:"text" db:"text"`
	Author    Author    `json:"author" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OwnerID implements policy.Owned
func (r *Review) OwnerID() string {
	return r.Author.UserID
}
