package importer

import (
	"context"
	"testing"

	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/KevinTan25/flightsApp/internal/gateway"
	"github.com/KevinTan25/flightsApp/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAirportRepository struct {
	mock.Mock
}

func (m *MockAirportRepository) List(ctx context.Context) ([]domain.Airport, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Airport), args.Error(1)
}

func (m *MockAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Airport), args.Error(1)
}

func (m *MockAirportRepository) GetByCode(ctx context.Context, code string) (*domain.Airport, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Airport), args.Error(1)
}

func (m *MockAirportRepository) GetOrCreate(ctx context.Context, airport *domain.Airport) (bool, error) {
	args := m.Called(ctx, airport)
	return args.Bool(0), args.Error(1)
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightRepository) Upsert(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) GetOrCreateAircraft(ctx context.Context, aircraft *domain.AircraftType) (bool, error) {
	args := m.Called(ctx, aircraft)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) GetRentalByID(ctx context.Context, id int64) (*domain.AirplaneRental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AirplaneRental), args.Error(1)
}

type MockQuoter struct {
	mock.Mock
}

func (m *MockQuoter) Quote(ctx context.Context, query gateway.QuoteQuery) (*gateway.QuotePayload, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.QuotePayload), args.Error(1)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateCatalog(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func validRequest() ImportRequest {
	return ImportRequest{
		DepartureID:  "JFK",
		ArrivalID:    "LAX",
		OutboundDate: "2026-09-01",
	}
}

func validLeg(number string) gateway.Leg {
	return gateway.Leg{
		FlightNumber: number,
		Airplane:     "Boeing 737",
		Extensions:   []string{"Wi-Fi", "In-seat power"},
		DepartureAirport: gateway.Endpoint{
			ID:   "JFK",
			Name: "John F. Kennedy International",
			Time: "2026-09-01 08:00",
		},
		ArrivalAirport: gateway.Endpoint{
			ID:   "LAX",
			Name: "Los Angeles International",
			Time: "2026-09-01 11:30",
		},
	}
}

func airportWithCode(code string) interface{} {
	return mock.MatchedBy(func(a *domain.Airport) bool { return a.Code == code })
}

func TestImporterService_ImportFlights(t *testing.T) {
	mockAirports := &MockAirportRepository{}
	mockFlights := &MockFlightRepository{}
	mockQuoter := &MockQuoter{}
	mockCache := &MockInvalidator{}
	service := NewImporterService(mockAirports, mockFlights, mockQuoter, mockCache, "USD")

	ctx := context.Background()
	payload := &gateway.QuotePayload{
		BestFlights: []gateway.Itinerary{{
			Price:   decimal.RequireFromString("349.00"),
			Flights: []gateway.Leg{validLeg("AA100"), validLeg("AA200")},
		}},
	}

	mockQuoter.On("Quote", ctx, gateway.QuoteQuery{
		DepartureID: "JFK", ArrivalID: "LAX", OutboundDate: "2026-09-01", Currency: "USD",
	}).Return(payload, nil).Once()

	mockAirports.On("GetOrCreate", ctx, airportWithCode("JFK")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Airport).ID = 1 }).
		Return(true, nil).Once()
	mockAirports.On("GetOrCreate", ctx, airportWithCode("LAX")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Airport).ID = 2 }).
		Return(true, nil).Once()
	// Later legs find the airports already present.
	mockAirports.On("GetOrCreate", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			a := args.Get(1).(*domain.Airport)
			if a.Code == "JFK" {
				a.ID = 1
			} else {
				a.ID = 2
			}
		}).
		Return(false, nil)

	mockFlights.On("GetOrCreateAircraft", ctx, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.AircraftType).ID = 9 }).
		Return(true, nil).Once()
	mockFlights.On("GetOrCreateAircraft", ctx, mock.Anything).Return(false, nil)

	mockFlights.On("Upsert", ctx, mock.MatchedBy(func(f *domain.Flight) bool {
		return f.DepartureAirportID == 1 && f.ArrivalAirportID == 2 &&
			f.Cost.Equal(decimal.RequireFromString("349.00")) &&
			f.Amenities == "Wi-Fi, In-seat power"
	})).Return(nil).Twice()

	mockCache.On("InvalidateCatalog", ctx).Return(nil).Once()

	summary, err := service.ImportFlights(ctx, validRequest())

	assert.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.FlightsImported)
	assert.Equal(t, 2, summary.AirportsCreated)
	assert.Equal(t, 1, summary.AircraftCreated)
	assert.Equal(t, 0, summary.RecordsSkipped)
	mockFlights.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestImporterService_ImportFlights_RerunCreatesNothingNew(t *testing.T) {
	mockAirports := &MockAirportRepository{}
	mockFlights := &MockFlightRepository{}
	mockQuoter := &MockQuoter{}
	service := NewImporterService(mockAirports, mockFlights, mockQuoter, nil, "USD")

	ctx := context.Background()
	payload := &gateway.QuotePayload{
		BestFlights: []gateway.Itinerary{{
			Price:   decimal.RequireFromString("349.00"),
			Flights: []gateway.Leg{validLeg("AA100")},
		}},
	}

	mockQuoter.On("Quote", ctx, mock.Anything).Return(payload, nil).Once()
	mockAirports.On("GetOrCreate", ctx, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Airport).ID = 1 }).
		Return(false, nil)
	mockFlights.On("GetOrCreateAircraft", ctx, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.AircraftType).ID = 9 }).
		Return(false, nil)
	mockFlights.On("Upsert", ctx, mock.Anything).Return(nil).Once()

	summary, err := service.ImportFlights(ctx, validRequest())

	assert.NoError(t, err)
	// Everything resolved by natural key, so a re-run only refreshes rows.
	assert.Equal(t, 1, summary.FlightsImported)
	assert.Equal(t, 0, summary.AirportsCreated)
	assert.Equal(t, 0, summary.AircraftCreated)
}

func TestImporterService_ImportFlights_SkipsMalformedLeg(t *testing.T) {
	mockAirports := &MockAirportRepository{}
	mockFlights := &MockFlightRepository{}
	mockQuoter := &MockQuoter{}
	service := NewImporterService(mockAirports, mockFlights, mockQuoter, nil, "USD")

	ctx := context.Background()
	missingNumber := validLeg("")
	badTime := validLeg("AA300")
	badTime.DepartureAirport.Time = "not-a-time"

	payload := &gateway.QuotePayload{
		BestFlights: []gateway.Itinerary{{
			Price:   decimal.RequireFromString("349.00"),
			Flights: []gateway.Leg{missingNumber, validLeg("AA200"), badTime},
		}},
	}

	mockQuoter.On("Quote", ctx, mock.Anything).Return(payload, nil).Once()
	mockAirports.On("GetOrCreate", ctx, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Airport).ID = 1 }).
		Return(false, nil)
	mockFlights.On("GetOrCreateAircraft", ctx, mock.Anything).Return(false, nil)
	mockFlights.On("Upsert", ctx, mock.MatchedBy(func(f *domain.Flight) bool {
		return f.FlightNumber == "AA200"
	})).Return(nil).Once()

	summary, err := service.ImportFlights(ctx, validRequest())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.FlightsImported)
	assert.Equal(t, 2, summary.RecordsSkipped)
	mockFlights.AssertExpectations(t)
}

func TestImporterService_ImportFlights_InvalidRequest(t *testing.T) {
	mockQuoter := &MockQuoter{}
	service := NewImporterService(&MockAirportRepository{}, &MockFlightRepository{}, mockQuoter, nil, "USD")

	cases := []struct {
		name   string
		mutate func(*ImportRequest)
	}{
		{"missing departure", func(r *ImportRequest) { r.DepartureID = "" }},
		{"missing arrival", func(r *ImportRequest) { r.ArrivalID = "" }},
		{"bad date", func(r *ImportRequest) { r.OutboundDate = "09/01/2026" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)

			summary, err := service.ImportFlights(context.Background(), req)

			assert.Nil(t, summary)
			var vErr *domain.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
	mockQuoter.AssertNotCalled(t, "Quote")
}

func TestImporterService_ImportFlights_GatewayFailure(t *testing.T) {
	mockQuoter := &MockQuoter{}
	service := NewImporterService(&MockAirportRepository{}, &MockFlightRepository{}, mockQuoter, nil, "USD")

	ctx := context.Background()
	gwErr := &domain.GatewayError{Status: 503, Body: "unavailable"}
	mockQuoter.On("Quote", ctx, mock.Anything).Return(nil, gwErr).Once()

	summary, err := service.ImportFlights(ctx, validRequest())

	assert.Nil(t, summary)
	var got *domain.GatewayError
	assert.ErrorAs(t, err, &got)
	assert.Equal(t, 503, got.Status)
}

func TestImporterService_DefaultsUnknownFields(t *testing.T) {
	mockAirports := &MockAirportRepository{}
	mockFlights := &MockFlightRepository{}
	mockQuoter := &MockQuoter{}
	service := NewImporterService(mockAirports, mockFlights, mockQuoter, nil, "USD")

	ctx := context.Background()
	leg := validLeg("AA100")
	leg.Airplane = ""
	payload := &gateway.QuotePayload{
		BestFlights: []gateway.Itinerary{{
			Price:   decimal.RequireFromString("349.00"),
			Flights: []gateway.Leg{leg},
		}},
	}

	mockQuoter.On("Quote", ctx, mock.Anything).Return(payload, nil).Once()
	mockAirports.On("GetOrCreate", ctx, mock.MatchedBy(func(a *domain.Airport) bool {
		return a.City == "Unknown" && a.Country == "Unknown"
	})).Run(func(args mock.Arguments) { args.Get(1).(*domain.Airport).ID = 1 }).
		Return(false, nil)
	mockFlights.On("GetOrCreateAircraft", ctx, mock.MatchedBy(func(a *domain.AircraftType) bool {
		return a.Model == "Unknown" && a.SeatCapacity == 200
	})).Return(false, nil).Once()
	mockFlights.On("Upsert", ctx, mock.MatchedBy(func(f *domain.Flight) bool {
		return f.SeatsLeft >= 50 && f.SeatsLeft <= 200
	})).Return(nil).Once()

	summary, err := service.ImportFlights(ctx, validRequest())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.FlightsImported)
	mockFlights.AssertExpectations(t)
}
