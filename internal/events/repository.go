package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventpulse/backend/internal/models"
)

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// derivedStatus computes upcoming/completed from the stored instant at query
// time, so two calls straddling the event's start can observe different
// statuses for the same stored record.
const derivedStatus = `CASE WHEN e.date >= NOW() THEN 'upcoming' ELSE 'completed' END`

const eventColumns = `e.id, e.name, e.description, e.date, e.location, e.area, e.category,
	e.tags, e.image, e.featured, e.organizer, e.rsvp_count, e.checked_in_count,
	e.created_at, e.updated_at`

// Create inserts a new event with zeroed counters.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (name, description, date, location, area, category, tags, image, featured, organizer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, rsvp_count, checked_in_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		e.Name, e.Description, e.Date, e.Location, e.Area, e.Category, e.Tags, e.Image, e.Featured, e.Organizer).
		Scan(&e.ID, &e.RSVPCount, &e.CheckedInCount, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event with the organizer name joined and status derived
// at the moment of the call.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	q := `SELECT ` + eventColumns + `, COALESCE(u.name, ''), ` + derivedStatus + `
		FROM events e LEFT JOIN users u ON u.id = e.organizer
		WHERE e.id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.Location, &e.Area, &e.Category,
		&e.Tags, &e.Image, &e.Featured, &e.Organizer, &e.RSVPCount, &e.CheckedInCount,
		&e.CreatedAt, &e.UpdatedAt, &e.OrganizerName, &e.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetOwned returns an event only if it exists AND is owned by userID (or the
// caller is admin). A single filtered query keeps "doesn't exist" and "not
// yours" indistinguishable.
func (r *Repository) GetOwned(ctx context.Context, id, userID uuid.UUID, admin bool) (*models.Event, error) {
	q := `SELECT ` + eventColumns + `, '', ` + derivedStatus + `
		FROM events e
		WHERE e.id = $1 AND ($3 OR e.organizer = $2)`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id, userID, admin).Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.Location, &e.Area, &e.Category,
		&e.Tags, &e.Image, &e.Featured, &e.Organizer, &e.RSVPCount, &e.CheckedInCount,
		&e.CreatedAt, &e.UpdatedAt, &e.OrganizerName, &e.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// listColumns recomputes the RSVP and check-in counts from confirmed RSVPs
// in place of the cached counters, which can drift under concurrent load.
const listColumns = `e.id, e.name, e.description, e.date, e.location, e.area, e.category,
	e.tags, e.image, e.featured, e.organizer,
	(SELECT COUNT(*) FROM rsvps rv WHERE rv.event_id = e.id AND rv.status = 'confirmed'),
	(SELECT COUNT(*) FROM rsvps rv WHERE rv.event_id = e.id AND rv.status = 'confirmed' AND rv.checked_in),
	e.created_at, e.updated_at`

// List returns events with ANDed filters, sorted featured first, then
// upcoming before completed, then ascending by date.
func (r *Repository) List(ctx context.Context, f models.EventFilters) ([]models.Event, error) {
	q := `SELECT ` + listColumns + `, COALESCE(u.name, ''), ` + derivedStatus + `
		FROM events e LEFT JOIN users u ON u.id = e.organizer`

	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("e.category = $%d", f.Category)
	}
	if f.Area != "" {
		add("e.area = $%d", f.Area)
	}
	if f.Featured != nil {
		add("e.featured = $%d", *f.Featured)
	}
	if f.DateFrom != nil {
		add("e.date >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("e.date <= $%d", *f.DateTo)
	}
	switch f.Status {
	case models.EventUpcoming:
		conds = append(conds, "e.date >= NOW()")
	case models.EventCompleted:
		conds = append(conds, "e.date < NOW()")
	}
	for i, cond := range conds {
		if i == 0 {
			q += " WHERE " + cond
		} else {
			q += " AND " + cond
		}
	}
	q += " ORDER BY e.featured DESC, (e.date < NOW()) ASC, e.date ASC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListByOrganizer returns the organizer's events with counts recomputed from
// source records, newest first.
func (r *Repository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]models.Event, error) {
	q := `SELECT ` + listColumns + `, COALESCE(u.name, ''), ` + derivedStatus + `
		FROM events e LEFT JOIN users u ON u.id = e.organizer
		WHERE e.organizer = $1
		ORDER BY e.created_at DESC`
	rows, err := r.pool.Query(ctx, q, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]models.Event, error) {
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.Date, &e.Location, &e.Area, &e.Category,
			&e.Tags, &e.Image, &e.Featured, &e.Organizer, &e.RSVPCount, &e.CheckedInCount,
			&e.CreatedAt, &e.UpdatedAt, &e.OrganizerName, &e.Status); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update replaces the mutable fields of an owned event. Returns ErrNotFound
// when no event matches id and ownership.
func (r *Repository) Update(ctx context.Context, e *models.Event, userID uuid.UUID, admin bool) error {
	const q = `UPDATE events
		SET name = $1, description = $2, date = $3, location = $4, area = $5,
			category = $6, tags = $7, image = $8, featured = $9, updated_at = NOW()
		WHERE id = $10 AND ($12 OR organizer = $11)`
	tag, err := r.pool.Exec(ctx, q,
		e.Name, e.Description, e.Date, e.Location, e.Area, e.Category, e.Tags, e.Image, e.Featured,
		e.ID, userID, admin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes an owned event. RSVPs cascade at the store level.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID, admin bool) error {
	const q = `DELETE FROM events WHERE id = $1 AND ($3 OR organizer = $2)`
	tag, err := r.pool.Exec(ctx, q, id, userID, admin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
