package email

import (
	"context"
	"fmt"

	"github.com/journeyverse/backend/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	switch event.Type {
	case kafka.EventBookingCreated:
		fmt.Printf("send email to %s: booking %s created, total %.2f %s\n",
			event.Email, event.Reference, event.Amount, event.Currency)
	case kafka.EventPaymentSucceeded:
		fmt.Printf("send email to %s: payment of %.2f %s received, booking %s confirmed\n",
			event.Email, event.Amount, event.Currency, event.Reference)
	case kafka.EventPaymentFailed:
		fmt.Printf("send email to %s: payment for booking %s did not go through\n",
			event.Email, event.Reference)
	default:
		fmt.Printf("send email to %s about %s for booking %s\n",
			event.Email, event.Type, event.Reference)
	}
	return nil
}
