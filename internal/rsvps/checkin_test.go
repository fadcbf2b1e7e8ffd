package rsvps

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eventpulse/backend/internal/models"
)

type checkInResponse struct {
	Message          string   `json:"message"`
	AlreadyCheckedIn bool     `json:"alreadyCheckedIn"`
	Attendee         Attendee `json:"attendee"`
}

func TestCheckIn_FirstScan(t *testing.T) {
	store := new(mockStore)
	events := new(mockEvents)
	organizerID := uuid.New()
	eventID := uuid.New()
	h := NewHandler(store, events, nil)
	r := newRouter(h, organizerID)

	rv := &models.RSVP{
		ID:        uuid.New(),
		EventID:   eventID,
		UserName:  "Alice",
		UserEmail: "alice@example.com",
		CheckedIn: true,
	}
	events.On("GetOwned", mock.Anything, eventID, organizerID, false).Return(&models.Event{ID: eventID}, nil)
	store.On("CheckIn", mock.Anything, eventID, "rsvp_tok_1", organizerID).Return(rv, false, nil)

	w := doJSON(t, r, http.MethodPost, "/rsvp/check-in", CheckInRequest{
		EventID: eventID.String(),
		QRCode:  "rsvp_tok_1",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp checkInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Check-in successful", resp.Message)
	assert.False(t, resp.AlreadyCheckedIn)
	assert.Equal(t, "Alice", resp.Attendee.Name)
	assert.Equal(t, "alice@example.com", resp.Attendee.Email)
	assert.Equal(t, rv.ID.String(), resp.Attendee.RSVPID)
}

func TestCheckIn_RepeatScan(t *testing.T) {
	store := new(mockStore)
	events := new(mockEvents)
	organizerID := uuid.New()
	eventID := uuid.New()
	h := NewHandler(store, events, nil)
	r := newRouter(h, organizerID)

	rv := &models.RSVP{ID: uuid.New(), EventID: eventID, UserName: "Alice", CheckedIn: true}
	events.On("GetOwned", mock.Anything, eventID, organizerID, false).Return(&models.Event{ID: eventID}, nil)
	store.On("CheckIn", mock.Anything, eventID, "rsvp_tok_1", organizerID).Return(rv, true, nil)

	w := doJSON(t, r, http.MethodPost, "/rsvp/check-in", CheckInRequest{
		EventID: eventID.String(),
		QRCode:  "rsvp_tok_1",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp checkInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Attendee was already checked in", resp.Message)
	assert.True(t, resp.AlreadyCheckedIn)
}

func TestCheckIn_InvalidToken(t *testing.T) {
	store := new(mockStore)
	events := new(mockEvents)
	organizerID := uuid.New()
	eventID := uuid.New()
	h := NewHandler(store, events, nil)
	r := newRouter(h, organizerID)

	events.On("GetOwned", mock.Anything, eventID, organizerID, false).Return(&models.Event{ID: eventID}, nil)
	store.On("CheckIn", mock.Anything, eventID, "rsvp_bogus", organizerID).Return(nil, false, models.ErrNotFound)

	w := doJSON(t, r, http.MethodPost, "/rsvp/check-in", CheckInRequest{
		EventID: eventID.String(),
		QRCode:  "rsvp_bogus",
	})

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "invalid QR code or RSVP not found")
}

func TestCheckIn_NotTheOrganizer(t *testing.T) {
	store := new(mockStore)
	events := new(mockEvents)
	callerID := uuid.New()
	eventID := uuid.New()
	h := NewHandler(store, events, nil)
	r := newRouter(h, callerID)

	events.On("GetOwned", mock.Anything, eventID, callerID, false).Return(nil, models.ErrNotFound)

	w := doJSON(t, r, http.MethodPost, "/rsvp/check-in", CheckInRequest{
		EventID: eventID.String(),
		QRCode:  "rsvp_tok_1",
	})

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "event not found or you don't have permission")
	store.AssertNotCalled(t, "CheckIn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckIn_MissingFields(t *testing.T) {
	h := NewHandler(new(mockStore), new(mockEvents), nil)
	r := newRouter(h, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/rsvp/check-in", map[string]string{"eventId": uuid.New().String()})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
