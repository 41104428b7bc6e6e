package email

import (
	"context"
	"log"

	"github.com/Domenick1991/flightbooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send writes the notification to the log; a real mail transport plugs in here.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	log.Printf("notify user %d: %s for booking %d (flight %d seat %s)",
		event.UserID, event.Type, event.BookingID, event.FlightID, event.SeatNumber)
	return nil
}
