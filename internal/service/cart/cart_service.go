package cart

import (
	"context"
	"log"
	"time"

	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/KevinTan25/flightsApp/internal/kafka"
	"github.com/KevinTan25/flightsApp/internal/repository"
	"github.com/shopspring/decimal"
)

type CartUseCase interface {
	GetOrCreateCart(ctx context.Context, userID string) (*CartView, error)
	CreateCart(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	AddFlight(ctx context.Context, userID string, flightID int64) (*domain.ShoppingCartFlight, error)
	AddRental(ctx context.Context, userID string, rentalID int64, rentalDays int) (*domain.ShoppingCartRental, error)
	RemoveCart(ctx context.Context, userID string) error
	TotalPrice(ctx context.Context, userID string) (decimal.Decimal, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// FlightLine pairs a flight line item with the flight it references.
type FlightLine struct {
	Item   domain.ShoppingCartFlight `json:"item"`
	Flight domain.Flight             `json:"flight"`
}

type RentalLine struct {
	Item   domain.ShoppingCartRental `json:"item"`
	Rental domain.AirplaneRental     `json:"rental"`
}

// CartView is the cart with its line items resolved, in insertion order.
type CartView struct {
	Cart    domain.ShoppingCart `json:"cart"`
	Flights []FlightLine        `json:"flights"`
	Rentals []RentalLine        `json:"rentals"`
	Total   decimal.Decimal     `json:"total"`
}

type CartService struct {
	carts              repository.CartRepository
	flights            repository.FlightRepository
	producer           Producer
	eventsTopic        string
	notificationsTopic string
}

type CartServiceOption func(*CartService)

func WithNotificationsTopic(topic string) CartServiceOption {
	return func(s *CartService) {
		s.notificationsTopic = topic
	}
}

func NewCartService(
	carts repository.CartRepository,
	flights repository.FlightRepository,
	producer Producer,
	eventsTopic string,
	opts ...CartServiceOption,
) *CartService {
	service := &CartService{
		carts:       carts,
		flights:     flights,
		producer:    producer,
		eventsTopic: eventsTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*CartView, error) {
	cart, created, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if created {
		s.publish(ctx, kafka.CartEvent{Type: "cart_created", UserID: userID, CartID: cart.ID})
	}
	return s.buildView(ctx, cart)
}

func (s *CartService) CreateCart(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	return s.carts.Create(ctx, userID)
}

func (s *CartService) AddFlight(ctx context.Context, userID string, flightID int64) (*domain.ShoppingCartFlight, error) {
	// Validate the flight before touching the cart, so a bad add leaves no
	// partial state behind.
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}

	cart, _, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Adds are additive: a flight already in the cart gets another line item.
	item, err := s.carts.AddFlight(ctx, cart.ID, flight.ID, 1)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.CartEvent{
		Type:         "flight_added",
		UserID:       userID,
		CartID:       cart.ID,
		FlightID:     flight.ID,
		FlightNumber: flight.FlightNumber,
	})
	return item, nil
}

func (s *CartService) AddRental(ctx context.Context, userID string, rentalID int64, rentalDays int) (*domain.ShoppingCartRental, error) {
	if rentalDays < 1 {
		return nil, &domain.ValidationError{Field: "rental_days", Reason: "must be at least 1"}
	}

	rental, err := s.flights.GetRentalByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	cart, _, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.carts.AddRental(ctx, cart.ID, rental.ID, rentalDays)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.CartEvent{Type: "rental_added", UserID: userID, CartID: cart.ID})
	return item, nil
}

func (s *CartService) RemoveCart(ctx context.Context, userID string) error {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.carts.Delete(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, kafka.CartEvent{Type: "cart_deleted", UserID: userID, CartID: cart.ID})
	return nil
}

func (s *CartService) TotalPrice(ctx context.Context, userID string) (decimal.Decimal, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.flightsTotal(ctx, cart.ID)
}

// flightsTotal sums flight costs over the cart's flight line items.
// Rental line items do not contribute, and quantity does not multiply the
// cost: one line item counts its flight's cost once.
func (s *CartService) flightsTotal(ctx context.Context, cartID int64) (decimal.Decimal, error) {
	items, err := s.carts.ListFlightItems(ctx, cartID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range items {
		flight, err := s.flights.GetByID(ctx, item.FlightID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(flight.Cost)
	}
	return total, nil
}

func (s *CartService) buildView(ctx context.Context, cart *domain.ShoppingCart) (*CartView, error) {
	view := &CartView{
		Cart:    *cart,
		Flights: make([]FlightLine, 0),
		Rentals: make([]RentalLine, 0),
		Total:   decimal.Zero,
	}

	items, err := s.carts.ListFlightItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		flight, err := s.flights.GetByID(ctx, item.FlightID)
		if err != nil {
			return nil, err
		}
		view.Flights = append(view.Flights, FlightLine{Item: item, Flight: *flight})
		view.Total = view.Total.Add(flight.Cost)
	}

	rentals, err := s.carts.ListRentalItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	for _, item := range rentals {
		rental, err := s.flights.GetRentalByID(ctx, item.RentalID)
		if err != nil {
			return nil, err
		}
		view.Rentals = append(view.Rentals, RentalLine{Item: item, Rental: *rental})
	}

	return view, nil
}

func (s *CartService) publish(ctx context.Context, event kafka.CartEvent) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event.At = time.Now()
	if err := s.producer.Publish(ctx, s.eventsTopic, event.UserID, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for user %s: %v", event.Type, event.UserID, err)
	}
	if s.notificationsTopic != "" {
		// Notifications feed the email worker, so they get a few delivery
		// attempts before being dropped.
		if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, event.UserID, event, 3); err != nil {
			log.Printf("WARNING: failed to publish %s notification for user %s: %v", event.Type, event.UserID, err)
		}
	}
}

var _ CartUseCase = (*CartService)(nil)
