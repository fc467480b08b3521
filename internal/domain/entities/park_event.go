package entities

import (
	"time"

	"github.com/google/uuid"
)

// ParkEventType represents the type of park event
type ParkEventType string

const (
	ParkEventTypeCreated       ParkEventType = "park_created"
	ParkEventTypeUpdated       ParkEventType = "park_updated"
	ParkEventTypeDeleted       ParkEventType = "park_deleted"
	ParkEventTypeRatingUpdated ParkEventType = "rating_updated"
)

// ParkEvent is broadcast after a park or one of its aggregates changes
type ParkEvent struct {
	ID        string        `json:"id"`
	ParkID    string        `json:"park_id"`
	EventType ParkEventType `json:"event_type"`
	Rating    float64       `json:"rating,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewParkEvent creates a new park event
func NewParkEvent(parkID string, eventType ParkEventType) *ParkEvent {
	return &ParkEvent{
		ID:        uuid.New().String(),
		ParkID:    parkID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}
