package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GlobalStats holds the public landing-page counters.
type GlobalStats struct {
	LinksCreated    int64 `json:"links_created"`
	TotalScans      int64 `json:"total_scans"`
	UniqueCountries int64 `json:"unique_countries"`
}

// StatsRepository serves cross-table aggregates straight over pgx; these
// queries bypass the ORM because they touch whole tables, not entities.
type StatsRepository interface {
	Global(ctx context.Context) (*GlobalStats, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns a pgx-backed StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Global(ctx context.Context) (*GlobalStats, error) {
	var stats GlobalStats

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM links`).Scan(&stats.LinksCreated); err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_scans), 0) FROM links`).Scan(&stats.TotalScans); err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT country) FROM scan_events
		 WHERE country <> '' AND country NOT IN ('Unknown', 'Local')`).Scan(&stats.UniqueCountries); err != nil {
		return nil, err
	}

	return &stats, nil
}
