package importer

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/KevinTan25/flightsApp/internal/gateway"
	"github.com/KevinTan25/flightsApp/internal/repository"
	"github.com/google/uuid"
)

type ImporterUseCase interface {
	ImportFlights(ctx context.Context, req ImportRequest) (*ImportSummary, error)
}

// Invalidator drops cached catalog lists after an import changes them.
type Invalidator interface {
	InvalidateCatalog(ctx context.Context) error
}

type ImportRequest struct {
	DepartureID      string `json:"departure_id"`
	ArrivalID        string `json:"arrival_id"`
	OutboundDate     string `json:"outbound_date"`
	DepartureCity    string `json:"departure_city"`
	DepartureCountry string `json:"departure_country"`
	ArrivalCity      string `json:"arrival_city"`
	ArrivalCountry   string `json:"arrival_country"`
}

func (r ImportRequest) validate() error {
	if r.DepartureID == "" {
		return &domain.ValidationError{Field: "departure_id", Reason: "is required"}
	}
	if r.ArrivalID == "" {
		return &domain.ValidationError{Field: "arrival_id", Reason: "is required"}
	}
	if _, err := time.Parse("2006-01-02", r.OutboundDate); err != nil {
		return &domain.ValidationError{Field: "outbound_date", Reason: "must be a YYYY-MM-DD date"}
	}
	return nil
}

type ImportSummary struct {
	RunID           string `json:"run_id"`
	FlightsImported int    `json:"flights_imported"`
	AirportsCreated int    `json:"airports_created"`
	AircraftCreated int    `json:"aircraft_created"`
	RecordsSkipped  int    `json:"records_skipped"`
}

// ImporterService pulls itineraries from the gateway and folds them into the
// catalog with natural-key upserts (airport code, aircraft model, flight
// number), so re-running the same import creates no duplicates.
type ImporterService struct {
	airports repository.AirportRepository
	flights  repository.FlightRepository
	quoter   gateway.Quoter
	cache    Invalidator
	currency string
}

func NewImporterService(
	airports repository.AirportRepository,
	flights repository.FlightRepository,
	quoter gateway.Quoter,
	cache Invalidator,
	currency string,
) *ImporterService {
	if currency == "" {
		currency = "USD"
	}
	return &ImporterService{
		airports: airports,
		flights:  flights,
		quoter:   quoter,
		cache:    cache,
		currency: currency,
	}
}

func (s *ImporterService) ImportFlights(ctx context.Context, req ImportRequest) (*ImportSummary, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	summary := &ImportSummary{RunID: uuid.NewString()}

	payload, err := s.quoter.Quote(ctx, gateway.QuoteQuery{
		DepartureID:  req.DepartureID,
		ArrivalID:    req.ArrivalID,
		OutboundDate: req.OutboundDate,
		Currency:     s.currency,
	})
	if err != nil {
		return nil, err
	}

	for _, itinerary := range payload.BestFlights {
		for _, leg := range itinerary.Flights {
			if err := s.importLeg(ctx, req, itinerary, leg, summary); err != nil {
				var vErr *domain.ValidationError
				if errors.As(err, &vErr) {
					log.Printf("import %s: skipping leg: %v", summary.RunID, vErr)
					summary.RecordsSkipped++
					continue
				}
				return nil, err
			}
			summary.FlightsImported++
		}
	}

	if s.cache != nil {
		_ = s.cache.InvalidateCatalog(ctx)
	}

	log.Printf("import %s: %d flights, %d new airports, %d new aircraft, %d skipped",
		summary.RunID, summary.FlightsImported, summary.AirportsCreated, summary.AircraftCreated, summary.RecordsSkipped)
	return summary, nil
}

func (s *ImporterService) importLeg(ctx context.Context, req ImportRequest, itinerary gateway.Itinerary, leg gateway.Leg, summary *ImportSummary) error {
	if err := validateLeg(leg); err != nil {
		return err
	}

	departureTime, err := parseLegTime(leg.DepartureAirport.Time)
	if err != nil {
		return &domain.ValidationError{Field: "departure_time", Reason: err.Error()}
	}
	arrivalTime, err := parseLegTime(leg.ArrivalAirport.Time)
	if err != nil {
		return &domain.ValidationError{Field: "arrival_time", Reason: err.Error()}
	}
	if !arrivalTime.After(departureTime) {
		return &domain.ValidationError{Field: "arrival_time", Reason: "must be after departure time"}
	}

	departure := &domain.Airport{
		Name:        leg.DepartureAirport.Name,
		Code:        leg.DepartureAirport.ID,
		City:        orUnknown(req.DepartureCity),
		Country:     orUnknown(req.DepartureCountry),
		AvgSecurity: randomSecurityTime(),
	}
	created, err := s.airports.GetOrCreate(ctx, departure)
	if err != nil {
		return err
	}
	if created {
		summary.AirportsCreated++
	}

	arrival := &domain.Airport{
		Name:        leg.ArrivalAirport.Name,
		Code:        leg.ArrivalAirport.ID,
		City:        orUnknown(req.ArrivalCity),
		Country:     orUnknown(req.ArrivalCountry),
		AvgSecurity: randomSecurityTime(),
	}
	created, err = s.airports.GetOrCreate(ctx, arrival)
	if err != nil {
		return err
	}
	if created {
		summary.AirportsCreated++
	}

	aircraft := &domain.AircraftType{Model: orUnknown(leg.Airplane), SeatCapacity: 200}
	created, err = s.flights.GetOrCreateAircraft(ctx, aircraft)
	if err != nil {
		return err
	}
	if created {
		summary.AircraftCreated++
	}

	flight := &domain.Flight{
		FlightNumber:       leg.FlightNumber,
		DepartureAirportID: departure.ID,
		ArrivalAirportID:   arrival.ID,
		DepartureTime:      departureTime,
		ArrivalTime:        arrivalTime,
		Cost:               itinerary.Price,
		AircraftID:         aircraft.ID,
		Amenities:          strings.Join(leg.Extensions, ", "),
		SeatsLeft:          randomSeatsLeft(),
	}
	return s.flights.Upsert(ctx, flight)
}

func validateLeg(leg gateway.Leg) error {
	if leg.FlightNumber == "" {
		return &domain.ValidationError{Field: "flight_number", Reason: "is required"}
	}
	if leg.DepartureAirport.ID == "" || leg.DepartureAirport.Name == "" {
		return &domain.ValidationError{Field: "departure_airport", Reason: "code and name are required"}
	}
	if leg.ArrivalAirport.ID == "" || leg.ArrivalAirport.Name == "" {
		return &domain.ValidationError{Field: "arrival_airport", Reason: "code and name are required"}
	}
	return nil
}

var legTimeLayouts = []string{"2006-01-02 15:04", time.RFC3339}

func parseLegTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range legTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// The upstream payload carries neither security times nor seat counts;
// defaults follow the ranges the data set has always used.
func randomSecurityTime() time.Duration {
	return time.Duration(5+rand.IntN(26)) * time.Minute
}

func randomSeatsLeft() int {
	return 50 + rand.IntN(151)
}

var _ ImporterUseCase = (*ImporterService)(nil)
