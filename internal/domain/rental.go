package domain

import "github.com/shopspring/decimal"

type AirplaneRental struct {
	ID         int64           `json:"id"`
	AircraftID int64           `json:"aircraft_id"`
	RentalCost decimal.Decimal `json:"rental_cost"`
	Amenities  string          `json:"amenities"`
	Available  bool            `json:"available"`
}
