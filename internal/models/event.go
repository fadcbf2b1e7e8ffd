package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the derived lifecycle state of an event. It is a pure
// function of the scheduled instant and the current time, never persisted:
// an event created as upcoming silently becomes completed once its time
// passes, with no explicit transition firing.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventCompleted EventStatus = "completed"
)

// Event represents a published event.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Area        string    `json:"area"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Image       *string   `json:"image,omitempty"`
	Featured    bool      `json:"featured"`
	Organizer   uuid.UUID `json:"organizer"`

	// OrganizerName is joined from the users table on read paths.
	OrganizerName string `json:"organizer_name,omitempty"`

	// RSVPCount and CheckedInCount are opportunistically maintained caches.
	// Ground truth is the rsvps table; the stats rollup always recomputes.
	RSVPCount      int `json:"rsvp_count"`
	CheckedInCount int `json:"checked_in_count"`

	// Status is derived at read time, see DerivedStatus.
	Status EventStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DerivedStatus returns upcoming if the scheduled instant is at or after
// now, completed otherwise. The boundary is exactly the scheduled instant.
func (e *Event) DerivedStatus(now time.Time) EventStatus {
	if !e.Date.Before(now) {
		return EventUpcoming
	}
	return EventCompleted
}

// EventFilters are ANDed list filters.
type EventFilters struct {
	Category string
	Area     string
	Featured *bool
	Status   EventStatus // empty = all
	DateFrom *time.Time
	DateTo   *time.Time
}
