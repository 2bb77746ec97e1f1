// Package queue carries booking events over the message broker: the
// publishers used by the API and the consumers behind cmd/booking-logger.
package queue

import (
	"context"
	"time"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// BookingConfirmedEvent is published once per booking, after the
// settlement transaction committed.  It carries enough for downstream
// consumers to log or notify without reading the primary database.
type BookingConfirmedEvent struct {
	BookingID   string   `json:"booking_id"`
	OrderID     string   `json:"order_id"`
	PaymentID   string   `json:"payment_id"`
	UserID      uint64   `json:"user_id"`
	ShowtimeID  uint64   `json:"showtime_id"`
	MovieTitle  string   `json:"movie_title"`
	TheatreName string   `json:"theatre"`
	DateTime    string   `json:"datetime"`
	Seats       []string `json:"seats"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	ConfirmedAt string   `json:"confirmed_at"`
}

// NewBookingConfirmedEvent flattens a booking into its event payload.
func NewBookingConfirmedEvent(b *model.Booking) BookingConfirmedEvent {
	ev := BookingConfirmedEvent{
		BookingID:   b.ID,
		OrderID:     b.OrderID,
		UserID:      b.UserID,
		ShowtimeID:  b.ShowtimeID,
		MovieTitle:  b.MovieTitle,
		TheatreName: b.TheatreName,
		DateTime:    b.DateTime,
		Seats:       append([]string(nil), b.Seats...),
		Amount:      b.Amount,
		Currency:    b.Currency,
		ConfirmedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.PaymentID != nil {
		ev.PaymentID = *b.PaymentID
	}
	return ev
}

// Publisher sends booking events to a broker.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error
	Close() error
}

// NopPublisher drops events.  Used when EVENT_BROKER=none.
type NopPublisher struct{}

func (NopPublisher) PublishBookingConfirmed(context.Context, BookingConfirmedEvent) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
