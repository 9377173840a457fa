package email

import (
	"context"
	"fmt"

	"github.com/KevinTan25/flightsApp/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.CartEvent) error {
	switch event.Type {
	case "flight_added":
		fmt.Printf("notify %s: flight %s added to cart %d\n", event.UserID, event.FlightNumber, event.CartID)
	case "cart_deleted":
		fmt.Printf("notify %s: cart %d deleted\n", event.UserID, event.CartID)
	default:
		fmt.Printf("notify %s: %s for cart %d\n", event.UserID, event.Type, event.CartID)
	}
	return nil
}
