package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/KevinTan25/flightsApp/internal/gateway"
	"github.com/KevinTan25/flightsApp/internal/repository"
)

type CheckoutUseCase interface {
	Checkout(ctx context.Context, userID string) ([]QuoteResult, error)
}

// QuoteResult is the outcome for one flight line item: either a quote
// payload or a gateway error, never both.
type QuoteResult struct {
	LineItemID   int64                 `json:"line_item_id"`
	FlightID     int64                 `json:"flight_id"`
	FlightNumber string                `json:"flight_number"`
	Payload      *gateway.QuotePayload `json:"payload,omitempty"`
	Err          *domain.GatewayError  `json:"error,omitempty"`
}

// CheckoutService quotes every flight line item in the user's cart against
// the external gateway. It never mutates cart or catalog state.
type CheckoutService struct {
	carts    repository.CartRepository
	flights  repository.FlightRepository
	airports repository.AirportRepository
	quoter   gateway.Quoter
	currency string
}

func NewCheckoutService(
	carts repository.CartRepository,
	flights repository.FlightRepository,
	airports repository.AirportRepository,
	quoter gateway.Quoter,
	currency string,
) *CheckoutService {
	if currency == "" {
		currency = "USD"
	}
	return &CheckoutService{
		carts:    carts,
		flights:  flights,
		airports: airports,
		quoter:   quoter,
		currency: currency,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, userID string) ([]QuoteResult, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.carts.ListFlightItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		// Nothing to quote, do not contact the gateway at all.
		return []QuoteResult{}, nil
	}

	results := make([]QuoteResult, len(items))
	queries := make([]gateway.QuoteQuery, len(items))
	for i, item := range items {
		flight, err := s.flights.GetByID(ctx, item.FlightID)
		if err != nil {
			return nil, err
		}
		departure, err := s.airports.GetByID(ctx, flight.DepartureAirportID)
		if err != nil {
			return nil, err
		}
		arrival, err := s.airports.GetByID(ctx, flight.ArrivalAirportID)
		if err != nil {
			return nil, err
		}

		queries[i] = gateway.QuoteQuery{
			DepartureID:  departure.Code,
			ArrivalID:    arrival.Code,
			OutboundDate: flight.DepartureTime.Format("2006-01-02"),
			Currency:     s.currency,
		}
		results[i] = QuoteResult{
			LineItemID:   item.ID,
			FlightID:     flight.ID,
			FlightNumber: flight.FlightNumber,
		}
	}

	// Fan out one gateway call per line item. Results land at the line
	// item's index, so insertion order survives the concurrency, and one
	// item's failure never cancels its siblings.
	var wg sync.WaitGroup
	for i := range queries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, err := s.quoter.Quote(ctx, queries[i])
			if err != nil {
				var gwErr *domain.GatewayError
				if !errors.As(err, &gwErr) {
					gwErr = &domain.GatewayError{Body: err.Error()}
				}
				results[i].Err = gwErr
				return
			}
			results[i].Payload = payload
		}(i)
	}
	wg.Wait()

	return results, nil
}

var _ CheckoutUseCase = (*CheckoutService)(nil)
