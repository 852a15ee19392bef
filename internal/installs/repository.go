package installs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is a single recorded app-install prompt acceptance.
type Event struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats aggregates install counts per platform.
type Stats struct {
	Total      int            `json:"total"`
	ByPlatform map[string]int `json:"byPlatform"`
}

type Store interface {
	Record(ctx context.Context, platform, userAgent string) error
	Stats(ctx context.Context) (Stats, error)
}

type Repository struct {
	Pool *pgxpool.Pool
}

func (r *Repository) Record(ctx context.Context, platform, userAgent string) error {
	const q = `
INSERT INTO install_events (platform, user_agent)
VALUES ($1, NULLIF($2, ''))
`
	_, err := r.Pool.Exec(ctx, q, platform, userAgent)
	return err
}

func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	const q = `
SELECT platform, COUNT(*)
FROM install_events
GROUP BY platform
`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	stats := Stats{ByPlatform: map[string]int{}}
	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			return Stats{}, err
		}
		stats.ByPlatform[platform] = count
		stats.Total += count
	}
	return stats, rows.Err()
}
