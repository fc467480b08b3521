package entities

import "time"

// Park is a listed location owned by the user who created it
type Park struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Location    Location  `json:"location" db:"-"`
	Image       Image     `json:"image" db:"-"`
	Author      Author    `json:"author" db:"-"`
	CommentIDs  []string  `json:"comment_ids" db:"comment_ids"`
	ReviewIDs   []string  `json:"review_ids" db:"review_ids"`
	Rating      float64   `json:"rating" db:"rating"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// OwnerID implements policy.Owned
func (p *Park) OwnerID() string {
	return p.Author.UserID
}

// Location is the geocoded place of a park
type Location struct {
	Address   string  `json:"address" db:"address"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Image references a picture held by the image host
type Image struct {
	URL        string `json:"url" db:"image_url"`
	ExternalID string `json:"external_id" db:"image_id"`
}
