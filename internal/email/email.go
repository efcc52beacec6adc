package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/tripbooking/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender delivers guest notifications. Delivery is a log line until a mail
// provider is configured.
type Sender struct {
	log logrus.FieldLogger
}

func NewSender(log logrus.FieldLogger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject := Subject(event)
	if subject == "" {
		return nil
	}
	s.log.WithFields(logrus.Fields{
		"guest_id":  event.GuestID,
		"reference": event.Reference,
		"type":      event.Type,
	}).Info(subject)
	return nil
}

// Subject renders the notification line for event, or "" for events guests
// are not told about.
func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventRoomBooked:
		return fmt.Sprintf("room %d booked from %s to %s", event.RoomID, event.StartDate, event.EndDate)
	case kafka.EventFlightTicketReserved:
		return fmt.Sprintf("ticket reserved on flight %d", event.FlightID)
	default:
		return ""
	}
}
