package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joey603/sidour-avoda/internal/domain"
)

// SiteRepository defines persistence access for sites and their workers.
type SiteRepository interface {
	Create(ctx context.Context, site *domain.Site) error
	GetByID(ctx context.Context, id string) (*domain.Site, error)
	ListByDirector(ctx context.Context, directorID string) ([]domain.SiteSummary, error)
	Delete(ctx context.Context, directorID, id string) error
	AddWorker(ctx context.Context, worker *domain.SiteWorker) error
	ListWorkers(ctx context.Context, siteID string) ([]domain.SiteWorker, error)
}

type siteRepository struct {
	pool *pgxpool.Pool
}

// NewSiteRepository returns a Postgres-backed implementation.
func NewSiteRepository(pool *pgxpool.Pool) SiteRepository {
	return &siteRepository{pool: pool}
}

func (r *siteRepository) Create(ctx context.Context, site *domain.Site) error {
	shifts, err := json.Marshal(site.Shifts)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO sites (director_id, name, shifts)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		site.DirectorID,
		site.Name,
		shifts,
	).Scan(&site.ID, &site.CreatedAt, &site.UpdatedAt)
}

func (r *siteRepository) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	const query = `
        SELECT id, director_id, name, shifts, created_at, updated_at
        FROM sites WHERE id=$1`

	var (
		site   domain.Site
		shifts []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&site.ID,
		&site.DirectorID,
		&site.Name,
		&shifts,
		&site.CreatedAt,
		&site.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shifts, &site.Shifts); err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) ListByDirector(ctx context.Context, directorID string) ([]domain.SiteSummary, error) {
	const query = `
        SELECT s.id, s.name, COUNT(w.id)
        FROM sites s
        LEFT JOIN site_workers w ON w.site_id = s.id
        WHERE s.director_id=$1
        GROUP BY s.id, s.name
        ORDER BY s.created_at`

	rows, err := r.pool.Query(ctx, query, directorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]domain.SiteSummary, 0)
	for rows.Next() {
		var summary domain.SiteSummary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.WorkersCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Delete removes a site owned by the director; workers cascade in SQL.
func (r *siteRepository) Delete(ctx context.Context, directorID, id string) error {
	const query = `DELETE FROM sites WHERE id=$1 AND director_id=$2`

	cmd, err := r.pool.Exec(ctx, query, id, directorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *siteRepository) AddWorker(ctx context.Context, worker *domain.SiteWorker) error {
	roles, err := json.Marshal(worker.Roles)
	if err != nil {
		return err
	}
	availability, err := json.Marshal(worker.Availability)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO site_workers (site_id, name, max_shifts, roles, availability)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		worker.SiteID,
		worker.Name,
		worker.MaxShifts,
		roles,
		availability,
	).Scan(&worker.ID, &worker.CreatedAt)
}

func (r *siteRepository) ListWorkers(ctx context.Context, siteID string) ([]domain.SiteWorker, error) {
	const query = `
        SELECT id, site_id, name, max_shifts, roles, availability, created_at
        FROM site_workers WHERE site_id=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := make([]domain.SiteWorker, 0)
	for rows.Next() {
		var (
			worker       domain.SiteWorker
			roles        []byte
			availability []byte
		)
		if err := rows.Scan(
			&worker.ID,
			&worker.SiteID,
			&worker.Name,
			&worker.MaxShifts,
			&roles,
			&availability,
			&worker.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(roles, &worker.Roles); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(availability, &worker.Availability); err != nil {
			return nil, err
		}
		workers = append(workers, worker)
	}
	return workers, rows.Err()
}
