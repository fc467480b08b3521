package entities

import "time"

// Comment is free text left on a park. The park holds the back-reference.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Author    Author    `json:"author" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OwnerID implements policy.Owned
func (c *Comment) OwnerID() string {
	return c.Author.UserID
}
