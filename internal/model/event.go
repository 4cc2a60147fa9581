package model

import "time"

// Event is a scheduled event. Participants are populated with usernames when
// read back from a store.
type Event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Time         string        `json:"time"`
	Description  string        `json:"description"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// HasParticipant reports whether userID is registered for the event.
func (e Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// EventInput is the normalized write model handed to stores.
type EventInput struct {
	Date         string
	Time         string
	Description  string
	Participants []string
}

// EventPatch holds the fields of a partial update; nil means unchanged.
type EventPatch struct {
	Date         *string
	Time         *string
	Description  *string
	Participants *[]string
}

type CreateEventRequest struct {
	Date         string   `json:"date" binding:"required"`
	Time         string   `json:"time" binding:"required,clock"`
	Description  string   `json:"description" binding:"required,max=500"`
	Participants []string `json:"participants"`
}

type UpdateEventRequest struct {
	Date         *string   `json:"date" binding:"omitempty"`
	Time         *string   `json:"time" binding:"omitempty,clock"`
	Description  *string   `json:"description" binding:"omitempty,max=500"`
	Participants *[]string `json:"participants"`
}

type RegisterParticipantRequest struct {
	UserID string `json:"userId"`
}
