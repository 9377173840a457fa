package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AircraftType struct {
	ID           int64  `json:"id"`
	Model        string `json:"model"`
	SeatCapacity int    `json:"seat_capacity"`
}

type Flight struct {
	ID                 int64           `json:"id"`
	FlightNumber       string          `json:"flight_number"`
	DepartureAirportID int64           `json:"departure_airport_id"`
	ArrivalAirportID   int64           `json:"arrival_airport_id"`
	DepartureTime      time.Time       `json:"departure_time"`
	ArrivalTime        time.Time       `json:"arrival_time"`
	Cost               decimal.Decimal `json:"cost"`
	AircraftID         int64           `json:"aircraft_id"`
	Amenities          string          `json:"amenities"`
	SeatsLeft          int             `json:"seats_left"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Duration is the scheduled time between departure and arrival.
func (f *Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}
