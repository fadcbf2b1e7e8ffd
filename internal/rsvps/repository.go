package rsvps

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventpulse/backend/internal/models"
)

const uniqueViolation = "23505"

// errQRCodeTaken signals a QR token collision; the caller regenerates the
// token and retries.
var errQRCodeTaken = errors.New("qr code already in use")

const rsvpColumns = `id, event_id, user_id, user_name, user_email, phone, notes, status,
	qr_code, checked_in, checked_in_at, checked_in_by, created_at, updated_at`

// Repository handles RSVP persistence and the check-in transition.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an RSVP repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRSVP(row pgx.Row) (*models.RSVP, error) {
	var rv models.RSVP
	err := row.Scan(&rv.ID, &rv.EventID, &rv.UserID, &rv.UserName, &rv.UserEmail,
		&rv.Phone, &rv.Notes, &rv.Status, &rv.QRCode, &rv.CheckedIn,
		&rv.CheckedInAt, &rv.CheckedInBy, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create inserts a confirmed RSVP and increments the owning event's
// rsvp_count in the same transaction, so a crash between the two writes
// cannot leave the counter behind. The (event_id, user_id) unique constraint
// resolves concurrent double-submission: the loser of the race gets no row
// back and returns the winner's RSVP instead, with created=false.
func (r *Repository) Create(ctx context.Context, rv *models.RSVP) (created bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO rsvps (event_id, user_id, user_name, user_email, phone, notes, status, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, 'confirmed', $7)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING id, status, checked_in, created_at, updated_at`
	err = tx.QueryRow(ctx, q, rv.EventID, rv.UserID, rv.UserName, rv.UserEmail, rv.Phone, rv.Notes, rv.QRCode).
		Scan(&rv.ID, &rv.Status, &rv.CheckedIn, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Pair already reserved; return the existing record.
			existing, lookupErr := r.GetByEventAndUser(ctx, rv.EventID, rv.UserID)
			if lookupErr != nil {
				return false, lookupErr
			}
			*rv = *existing
			return false, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "rsvps_qr_code_unique" {
			return false, errQRCodeTaken
		}
		return false, err
	}

	if _, err = tx.Exec(ctx, `UPDATE events SET rsvp_count = rsvp_count + 1 WHERE id = $1`, rv.EventID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// GetByEventAndUser returns the RSVP for an (event, user) pair regardless of
// status, or ErrNotFound.
func (r *Repository) GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.RSVP, error) {
	q := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE event_id = $1 AND user_id = $2`
	rv, err := scanRSVP(r.pool.QueryRow(ctx, q, eventID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return rv, err
}

// GetConfirmed returns the confirmed RSVP for an (event, user) pair, or
// ErrNotFound.
func (r *Repository) GetConfirmed(ctx context.Context, eventID, userID uuid.UUID) (*models.RSVP, error) {
	q := `SELECT ` + rsvpColumns + ` FROM rsvps
		WHERE event_id = $1 AND user_id = $2 AND status = 'confirmed'`
	rv, err := scanRSVP(r.pool.QueryRow(ctx, q, eventID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return rv, err
}

// GetAnyConfirmedForEvent returns an arbitrary confirmed RSVP for the event,
// or ErrNotFound. Used by the organizer fallback on the check endpoint.
func (r *Repository) GetAnyConfirmedForEvent(ctx context.Context, eventID uuid.UUID) (*models.RSVP, error) {
	q := `SELECT ` + rsvpColumns + ` FROM rsvps
		WHERE event_id = $1 AND status = 'confirmed'
		ORDER BY created_at ASC LIMIT 1`
	rv, err := scanRSVP(r.pool.QueryRow(ctx, q, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return rv, err
}

// CheckIn performs the at-most-once check-in transition for the RSVP
// matching (qrCode, eventID, status=confirmed). A token issued for a
// different event never matches.
//
// The flag flip is a single conditional UPDATE guarded by checked_in=false,
// and the checked_in_count increment runs in the same transaction only when
// the flag actually flipped, so two concurrent scans of one ticket cannot
// both increment. A repeat scan returns the RSVP with alreadyCheckedIn=true.
func (r *Repository) CheckIn(ctx context.Context, eventID uuid.UUID, qrCode string, organizerID uuid.UUID) (rv *models.RSVP, alreadyCheckedIn bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	const flip = `UPDATE rsvps
		SET checked_in = TRUE, checked_in_at = NOW(), checked_in_by = $3, updated_at = NOW()
		WHERE qr_code = $1 AND event_id = $2 AND status = 'confirmed' AND checked_in = FALSE
		RETURNING ` + rsvpColumns
	rv, err = scanRSVP(tx.QueryRow(ctx, flip, qrCode, eventID, organizerID))
	if err == nil {
		if _, err = tx.Exec(ctx, `UPDATE events SET checked_in_count = checked_in_count + 1 WHERE id = $1`, eventID); err != nil {
			return nil, false, err
		}
		return rv, false, tx.Commit(ctx)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// No transition: either the ticket is unknown for this event or it was
	// already scanned. Distinguish without touching the counter.
	const lookup = `SELECT ` + rsvpColumns + ` FROM rsvps
		WHERE qr_code = $1 AND event_id = $2 AND status = 'confirmed'`
	rv, err = scanRSVP(tx.QueryRow(ctx, lookup, qrCode, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, models.ErrNotFound
		}
		return nil, false, err
	}
	return rv, true, tx.Commit(ctx)
}
