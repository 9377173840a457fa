package domain

import "time"

// ShoppingCart is the per-user selection of flights and rentals.
// A user has at most one cart, enforced by a unique constraint on user_id.
type ShoppingCart struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoppingCartFlight is one flight line item. Repeated adds of the same
// flight produce separate line items, they are not merged.
type ShoppingCartFlight struct {
	ID        int64     `json:"id"`
	CartID    int64     `json:"cart_id"`
	FlightID  int64     `json:"flight_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type ShoppingCartRental struct {
	ID         int64     `json:"id"`
	CartID     int64     `json:"cart_id"`
	RentalID   int64     `json:"rental_id"`
	RentalDays int       `json:"rental_days"`
	CreatedAt  time.Time `json:"created_at"`
}
