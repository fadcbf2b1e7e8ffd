package stats

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventpulse/backend/internal/models"
)

// Repository computes dashboard rollups. Read-only and idempotent: every
// total is recomputed from source records at query time, never read from the
// cached per-event counters, so the result is self-consistent even when the
// counters have drifted.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a stats repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// monthlyWindow is how many months of event counts the dashboard shows.
const monthlyWindow = 6

// Collect computes the full admin rollup relative to now.
func (r *Repository) Collect(ctx context.Context, now time.Time) (*models.AdminStats, error) {
	s := &models.AdminStats{}
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	const counts = `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM users WHERE created_at >= $1),
		(SELECT COUNT(*) FROM events),
		(SELECT COUNT(*) FROM events WHERE created_at >= $1),
		(SELECT COUNT(*) FROM events WHERE date >= $2),
		(SELECT COUNT(*) FROM events WHERE date < $2),
		(SELECT COUNT(*) FROM rsvps),
		(SELECT COUNT(*) FROM rsvps WHERE checked_in)`
	err := r.pool.QueryRow(ctx, counts, firstOfMonth, now).Scan(
		&s.TotalUsers, &s.NewUsersThisMonth,
		&s.TotalEvents, &s.NewEventsThisMonth,
		&s.UpcomingEvents, &s.CompletedEvents,
		&s.TotalRsvps, &s.TotalCheckins)
	if err != nil {
		return nil, err
	}

	if s.CategoryBreakdown, err = r.categoryBreakdown(ctx); err != nil {
		return nil, err
	}
	if s.MonthlyEvents, err = r.monthlyEvents(ctx, now); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) categoryBreakdown(ctx context.Context) ([]models.CategoryCount, error) {
	const q = `SELECT category, COUNT(*) FROM events
		GROUP BY category ORDER BY COUNT(*) DESC LIMIT 10`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdown := []models.CategoryCount{}
	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, cc)
	}
	return breakdown, rows.Err()
}

func (r *Repository) monthlyEvents(ctx context.Context, now time.Time) ([]models.MonthCount, error) {
	series := make([]models.MonthCount, 0, monthlyWindow)
	for i := monthlyWindow - 1; i >= 0; i-- {
		month := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		next := month.AddDate(0, 1, 0)

		var count int
		err := r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM events WHERE date >= $1 AND date < $2`, month, next).Scan(&count)
		if err != nil {
			return nil, err
		}
		series = append(series, models.MonthCount{Month: month.Format("Jan 2006"), Count: count})
	}
	return series, nil
}
