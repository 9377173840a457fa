package catalog

import (
	"context"
	"time"

	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/KevinTan25/flightsApp/internal/repository"
	"github.com/shopspring/decimal"
)

type CatalogUseCase interface {
	ListFlights(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error)
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
	GetFlightByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error)
	CreateFlight(ctx context.Context, input FlightInput) (*domain.Flight, error)
	UpdateFlight(ctx context.Context, id int64, input FlightInput) (*domain.Flight, error)
	DeleteFlight(ctx context.Context, id int64) error
	ListAirports(ctx context.Context) ([]domain.Airport, error)
	GetAirport(ctx context.Context, id int64) (*AirportDetail, error)
}

// Cache holds the unfiltered catalog lists. A nil Cache disables caching.
type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetAirports(ctx context.Context) ([]domain.Airport, error)
	SetAirports(ctx context.Context, airports []domain.Airport) error
	InvalidateCatalog(ctx context.Context) error
}

type FlightInput struct {
	FlightNumber       string          `json:"flight_number"`
	DepartureAirportID int64           `json:"departure_airport_id"`
	ArrivalAirportID   int64           `json:"arrival_airport_id"`
	DepartureTime      time.Time       `json:"departure_time"`
	ArrivalTime        time.Time       `json:"arrival_time"`
	Cost               decimal.Decimal `json:"cost"`
	AircraftID         int64           `json:"aircraft_id"`
	Amenities          string          `json:"amenities"`
	SeatsLeft          int             `json:"seats_left"`
}

func (in FlightInput) validate() error {
	if in.FlightNumber == "" {
		return &domain.ValidationError{Field: "flight_number", Reason: "is required"}
	}
	if in.DepartureAirportID == 0 || in.ArrivalAirportID == 0 {
		return &domain.ValidationError{Field: "airport", Reason: "departure and arrival airports are required"}
	}
	if !in.ArrivalTime.After(in.DepartureTime) {
		return &domain.ValidationError{Field: "arrival_time", Reason: "must be after departure time"}
	}
	if in.Cost.IsNegative() {
		return &domain.ValidationError{Field: "cost", Reason: "must not be negative"}
	}
	if in.SeatsLeft < 0 {
		return &domain.ValidationError{Field: "seats_left", Reason: "must not be negative"}
	}
	return nil
}

// AirportDetail is an airport together with the flights touching it.
type AirportDetail struct {
	Airport   domain.Airport  `json:"airport"`
	Departing []domain.Flight `json:"departing_flights"`
	Arriving  []domain.Flight `json:"arriving_flights"`
}

type CatalogService struct {
	flights  repository.FlightRepository
	airports repository.AirportRepository
	cache    Cache
}

func NewCatalogService(flights repository.FlightRepository, airports repository.AirportRepository, cache Cache) *CatalogService {
	return &CatalogService{flights: flights, airports: airports, cache: cache}
}

func (s *CatalogService) ListFlights(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	// Only the unfiltered list is cached.
	if filter.Empty() && s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter.Empty() && s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *CatalogService) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.flights.GetByID(ctx, id)
}

func (s *CatalogService) GetFlightByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	return s.flights.GetByNumber(ctx, flightNumber)
}

func (s *CatalogService) CreateFlight(ctx context.Context, input FlightInput) (*domain.Flight, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		FlightNumber:       input.FlightNumber,
		DepartureAirportID: input.DepartureAirportID,
		ArrivalAirportID:   input.ArrivalAirportID,
		DepartureTime:      input.DepartureTime,
		ArrivalTime:        input.ArrivalTime,
		Cost:               input.Cost,
		AircraftID:         input.AircraftID,
		Amenities:          input.Amenities,
		SeatsLeft:          input.SeatsLeft,
	}
	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *CatalogService) UpdateFlight(ctx context.Context, id int64, input FlightInput) (*domain.Flight, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		ID:                 id,
		FlightNumber:       input.FlightNumber,
		DepartureAirportID: input.DepartureAirportID,
		ArrivalAirportID:   input.ArrivalAirportID,
		DepartureTime:      input.DepartureTime,
		ArrivalTime:        input.ArrivalTime,
		Cost:               input.Cost,
		AircraftID:         input.AircraftID,
		Amenities:          input.Amenities,
		SeatsLeft:          input.SeatsLeft,
	}
	if err := s.flights.Update(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *CatalogService) DeleteFlight(ctx context.Context, id int64) error {
	if err := s.flights.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) ListAirports(ctx context.Context) ([]domain.Airport, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAirports(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	airports, err := s.airports.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetAirports(ctx, airports)
	}
	return airports, nil
}

func (s *CatalogService) GetAirport(ctx context.Context, id int64) (*AirportDetail, error) {
	airport, err := s.airports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	departing, err := s.flights.List(ctx, repository.FlightFilter{DepartureAirportID: id})
	if err != nil {
		return nil, err
	}
	arriving, err := s.flights.List(ctx, repository.FlightFilter{ArrivalAirportID: id})
	if err != nil {
		return nil, err
	}

	return &AirportDetail{Airport: *airport, Departing: departing, Arriving: arriving}, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateCatalog(ctx)
	}
}

var _ CatalogUseCase = (*CatalogService)(nil)
