package models

import (
	"time"

	"github.com/google/uuid"
)

// RSVPStatus is the reservation state for an (event, user) pair.
// No operation currently reaches cancelled; the value is reserved.
type RSVPStatus string

const (
	RSVPConfirmed RSVPStatus = "confirmed"
	RSVPCancelled RSVPStatus = "cancelled"
)

// RSVP is a reservation binding one attendee to one event, carrying a
// unique QR token. Attendee name/email/phone are snapshotted at RSVP time
// so a ticket's displayed identity is stable even if the user later edits
// their profile.
type RSVP struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"event_id"`
	UserID    uuid.UUID  `json:"user_id"`
	UserName  string     `json:"user_name"`
	UserEmail string     `json:"user_email"`
	Phone     *string    `json:"phone,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	Status    RSVPStatus `json:"status"`

	// QRCode is an opaque bearer capability scoped to exactly this
	// (event, RSVP) pair. Globally unique, immutable once issued.
	QRCode string `json:"qr_code"`

	CheckedIn   bool       `json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CheckedInBy *uuid.UUID `json:"checked_in_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
