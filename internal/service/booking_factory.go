package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// BookingFactory builds the booking record for a verified order.  It
// performs no I/O; persisting is the settler's job.
type BookingFactory struct {
	newID func() string
	now   func() time.Time
}

func NewBookingFactory() *BookingFactory {
	return &BookingFactory{
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Materialize copies the showtime snapshot taken at claim time, so later
// catalog edits never change what a ticket says.
func (f *BookingFactory) Materialize(order *model.PaymentOrder, snap model.ShowtimeSnapshot, paymentID string) *model.Booking {
	seats := model.NormalizeSeats(order.Seats)
	b := &model.Booking{
		ID:              f.newID(),
		UserID:          order.UserID,
		ShowtimeID:      order.ShowtimeID,
		OrderID:         order.OrderID,
		MovieTitle:      snap.MovieTitle,
		TheatreName:     snap.TheatreName,
		Date:            snap.Date,
		Time:            snap.Time,
		DateTime:        snap.DateTime(),
		Seats:           seats,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Status:          model.BookingConfirmed,
		PaymentProvider: model.ProviderRazorpay,
		CreatedAt:       f.now(),
	}
	if paymentID != "" {
		pid := paymentID
		b.PaymentID = &pid
	}
	return b
}
