package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HowsAir/server-sub001/internal/domain"
)

// StationRepository manages monitoring station markers.
type StationRepository interface {
	Create(ctx context.Context, station *domain.Station) error
	Update(ctx context.Context, station *domain.Station) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Station, error)
	ListActive(ctx context.Context) ([]domain.Station, error)
}

type stationRepository struct {
	pool *pgxpool.Pool
}

// NewStationRepository returns a Postgres-backed implementation.
func NewStationRepository(pool *pgxpool.Pool) StationRepository {
	return &stationRepository{pool: pool}
}

func (r *stationRepository) Create(ctx context.Context, station *domain.Station) error {
	const query = `
        INSERT INTO stations (external_id, name, latitude, longitude, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		station.ExternalID,
		station.Name,
		station.Latitude,
		station.Longitude,
		station.Active,
	).Scan(&station.ID, &station.CreatedAt, &station.UpdatedAt)
}

func (r *stationRepository) Update(ctx context.Context, station *domain.Station) error {
	const query = `
        UPDATE stations SET external_id=$1, name=$2, latitude=$3, longitude=$4, active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		station.ExternalID,
		station.Name,
		station.Latitude,
		station.Longitude,
		station.Active,
		station.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *stationRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM stations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *stationRepository) GetByID(ctx context.Context, id int64) (*domain.Station, error) {
	const query = `
        SELECT id, external_id, name, latitude, longitude, active, created_at, updated_at
        FROM stations WHERE id=$1`

	var station domain.Station
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&station.ID,
		&station.ExternalID,
		&station.Name,
		&station.Latitude,
		&station.Longitude,
		&station.Active,
		&station.CreatedAt,
		&station.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepository) ListActive(ctx context.Context) ([]domain.Station, error) {
	const query = `
        SELECT id, external_id, name, latitude, longitude, active, created_at, updated_at
        FROM stations WHERE active ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		var station domain.Station
		if err := rows.Scan(
			&station.ID,
			&station.ExternalID,
			&station.Name,
			&station.Latitude,
			&station.Longitude,
			&station.Active,
			&station.CreatedAt,
			&station.UpdatedAt,
		); err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, rows.Err()
}
