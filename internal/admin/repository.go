package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventpulse/backend/internal/models"
)

// Repository handles moderation queries over users and events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an admin repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users with activity counts, newest first.
// eventsAttended counts RSVPs the user actually checked in with.
func (r *Repository) ListUsers(ctx context.Context) ([]models.UserModerationRow, error) {
	const q = `SELECT u.id, u.name, u.email, u.role, u.status, u.created_at,
		(SELECT COUNT(*) FROM events e WHERE e.organizer = u.id),
		(SELECT COUNT(*) FROM rsvps rv WHERE rv.user_id = u.id AND rv.checked_in)
		FROM users u
		ORDER BY u.created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.UserModerationRow
	for rows.Next() {
		var row models.UserModerationRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Email, &row.Role, &row.Status,
			&row.CreatedAt, &row.EventsCreated, &row.EventsAttended); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// UpdateRole sets a user's role. Returns ErrNotFound if the user is missing.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateStatus sets a user's account status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user. The user's organized events, those events'
// RSVPs, and the user's own RSVPs all cascade at the store level.
func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListEvents returns every event with organizer name, recomputed RSVP count
// and derived status, ascending by date.
func (r *Repository) ListEvents(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT e.id, e.name, e.date, e.location, e.area, e.category,
		e.organizer, COALESCE(u.name, ''),
		(SELECT COUNT(*) FROM rsvps rv WHERE rv.event_id = e.id AND rv.status = 'confirmed'),
		CASE WHEN e.date >= NOW() THEN 'upcoming' ELSE 'completed' END,
		e.created_at
		FROM events e LEFT JOIN users u ON u.id = e.organizer
		ORDER BY e.date ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &e.Area, &e.Category,
			&e.Organizer, &e.OrganizerName, &e.RSVPCount, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// DeleteEvent removes any event regardless of owner. RSVPs cascade.
func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
