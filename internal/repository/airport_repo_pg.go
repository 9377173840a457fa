package repository

import (
	"context"
	"errors"
	"time"

	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AirportRepository interface {
	List(ctx context.Context) ([]domain.Airport, error)
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
	GetByCode(ctx context.Context, code string) (*domain.Airport, error)
	// GetOrCreate inserts the airport unless one with the same code exists.
	// Either way the argument is filled with the stored row. Returns true
	// when a new row was created.
	GetOrCreate(ctx context.Context, airport *domain.Airport) (bool, error)
}

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

const airportColumns = `id, name, code, city, country, amenities, avg_security_seconds, image_url, created_at, updated_at`

func scanAirport(row pgx.Row, a *domain.Airport) error {
	var secs int64
	if err := row.Scan(&a.ID, &a.Name, &a.Code, &a.City, &a.Country, &a.Amenities, &secs, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return err
	}
	a.AvgSecurity = time.Duration(secs) * time.Second
	return nil
}

func (r *PGAirportRepository) List(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT `+airportColumns+` FROM airports ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := scanAirport(rows, &a); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

func (r *PGAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	row := r.db.QueryRow(ctx, `SELECT `+airportColumns+` FROM airports WHERE id=$1`, id)
	var a domain.Airport
	if err := scanAirport(row, &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGAirportRepository) GetByCode(ctx context.Context, code string) (*domain.Airport, error) {
	row := r.db.QueryRow(ctx, `SELECT `+airportColumns+` FROM airports WHERE code=$1`, code)
	var a domain.Airport
	if err := scanAirport(row, &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGAirportRepository) GetOrCreate(ctx context.Context, airport *domain.Airport) (bool, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO airports (name, code, city, country, amenities, avg_security_seconds, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO NOTHING
		RETURNING id, created_at, updated_at`,
		airport.Name, airport.Code, airport.City, airport.Country, airport.Amenities, int64(airport.AvgSecurity/time.Second), airport.ImageURL)

	err := row.Scan(&airport.ID, &airport.CreatedAt, &airport.UpdatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	// Conflict: the code is already taken, keep the stored row untouched.
	existing, err := r.GetByCode(ctx, airport.Code)
	if err != nil {
		return false, err
	}
	*airport = *existing
	return false, nil
}

var _ AirportRepository = (*PGAirportRepository)(nil)
