package models

// CategoryCount is one row of the category breakdown.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthCount is one row of the monthly events series.
type MonthCount struct {
	Month string `json:"month"` // e.g. "Jan 2026"
	Count int    `json:"count"`
}

// AdminStats is the dashboard rollup. Totals are recomputed from source
// records at query time, never read from the cached per-event counters.
type AdminStats struct {
	TotalUsers         int             `json:"totalUsers"`
	TotalEvents        int             `json:"totalEvents"`
	TotalRsvps         int             `json:"totalRsvps"`
	TotalCheckins      int             `json:"totalCheckins"`
	NewUsersThisMonth  int             `json:"newUsersThisMonth"`
	NewEventsThisMonth int             `json:"newEventsThisMonth"`
	UpcomingEvents     int             `json:"upcomingEvents"`
	CompletedEvents    int             `json:"completedEvents"`
	CategoryBreakdown  []CategoryCount `json:"categoryBreakdown"`
	MonthlyEvents      []MonthCount    `json:"monthlyEvents"`
}
