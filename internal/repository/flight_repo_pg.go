package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FlightFilter narrows the flight listing. Zero values mean "no filter".
type FlightFilter struct {
	Query              string // substring match on flight number
	DepartureAirportID int64
	ArrivalAirportID   int64
}

func (f FlightFilter) Empty() bool {
	return f.Query == "" && f.DepartureAirportID == 0 && f.ArrivalAirportID == 0
}

type FlightRepository interface {
	List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
	// Upsert creates the flight or, when the flight number is already known,
	// overwrites the stored row with the given data (update-or-create by
	// natural key, for idempotent imports).
	Upsert(ctx context.Context, flight *domain.Flight) error
	GetOrCreateAircraft(ctx context.Context, aircraft *domain.AircraftType) (bool, error)
	GetRentalByID(ctx context.Context, id int64) (*domain.AirplaneRental, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, departure_airport_id, arrival_airport_id, departure_time, arrival_time, cost, aircraft_id, amenities, seats_left, created_at, updated_at`

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FlightNumber, &f.DepartureAirportID, &f.ArrivalAirportID, &f.DepartureTime, &f.ArrivalTime, &f.Cost, &f.AircraftID, &f.Amenities, &f.SeatsLeft, &f.CreatedAt, &f.UpdatedAt)
}

func (r *PGFlightRepository) List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights`
	var conds []string
	var args []any

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conds = append(conds, fmt.Sprintf("flight_number ILIKE $%d", len(args)))
	}
	if filter.DepartureAirportID != 0 {
		args = append(args, filter.DepartureAirportID)
		conds = append(conds, fmt.Sprintf("departure_airport_id = $%d", len(args)))
	}
	if filter.ArrivalAirportID != 0 {
		args = append(args, filter.ArrivalAirportID)
		conds = append(conds, fmt.Sprintf("arrival_airport_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY departure_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_number=$1`, flightNumber)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	row := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, departure_airport_id, arrival_airport_id, departure_time, arrival_time, cost, aircraft_id, amenities, seats_left)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		flight.FlightNumber, flight.DepartureAirportID, flight.ArrivalAirportID, flight.DepartureTime, flight.ArrivalTime, flight.Cost, flight.AircraftID, flight.Amenities, flight.SeatsLeft)
	if err := row.Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt); err != nil {
		return translatePGError(err)
	}
	return nil
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	row := r.db.QueryRow(ctx, `UPDATE flights SET flight_number=$1, departure_airport_id=$2, arrival_airport_id=$3, departure_time=$4, arrival_time=$5, cost=$6, aircraft_id=$7, amenities=$8, seats_left=$9, updated_at=now()
		WHERE id=$10
		RETURNING created_at, updated_at`,
		flight.FlightNumber, flight.DepartureAirportID, flight.ArrivalAirportID, flight.DepartureTime, flight.ArrivalTime, flight.Cost, flight.AircraftID, flight.Amenities, flight.SeatsLeft, flight.ID)
	if err := row.Scan(&flight.CreatedAt, &flight.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return translatePGError(err)
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGFlightRepository) Upsert(ctx context.Context, flight *domain.Flight) error {
	row := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, departure_airport_id, arrival_airport_id, departure_time, arrival_time, cost, aircraft_id, amenities, seats_left)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (flight_number) DO UPDATE SET
			departure_airport_id=EXCLUDED.departure_airport_id,
			arrival_airport_id=EXCLUDED.arrival_airport_id,
			departure_time=EXCLUDED.departure_time,
			arrival_time=EXCLUDED.arrival_time,
			cost=EXCLUDED.cost,
			aircraft_id=EXCLUDED.aircraft_id,
			amenities=EXCLUDED.amenities,
			seats_left=EXCLUDED.seats_left,
			updated_at=now()
		RETURNING id, created_at, updated_at`,
		flight.FlightNumber, flight.DepartureAirportID, flight.ArrivalAirportID, flight.DepartureTime, flight.ArrivalTime, flight.Cost, flight.AircraftID, flight.Amenities, flight.SeatsLeft)
	return row.Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) GetOrCreateAircraft(ctx context.Context, aircraft *domain.AircraftType) (bool, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO aircraft_types (model, seat_capacity)
		VALUES ($1, $2)
		ON CONFLICT (model) DO NOTHING
		RETURNING id`,
		aircraft.Model, aircraft.SeatCapacity)

	err := row.Scan(&aircraft.ID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	row = r.db.QueryRow(ctx, `SELECT id, model, seat_capacity FROM aircraft_types WHERE model=$1`, aircraft.Model)
	if err := row.Scan(&aircraft.ID, &aircraft.Model, &aircraft.SeatCapacity); err != nil {
		return false, err
	}
	return false, nil
}

func (r *PGFlightRepository) GetRentalByID(ctx context.Context, id int64) (*domain.AirplaneRental, error) {
	row := r.db.QueryRow(ctx, `SELECT id, aircraft_id, rental_cost, amenities, available FROM airplane_rentals WHERE id=$1`, id)
	var rental domain.AirplaneRental
	if err := row.Scan(&rental.ID, &rental.AircraftID, &rental.RentalCost, &rental.Amenities, &rental.Available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rental, nil
}

// translatePGError maps postgres constraint violations onto the domain
// error taxonomy: 23505 unique -> ErrConflict, 23503 foreign key -> ErrNotFound.
func translatePGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrConflict
		case "23503":
			return domain.ErrNotFound
		}
	}
	return err
}

var _ FlightRepository = (*PGFlightRepository)(nil)
