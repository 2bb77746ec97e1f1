// Package service holds the booking core: layout pricing, occupancy
// reads, opening payment orders and confirming them into bookings.
package service

import (
	"context"

	"github.com/vivekyarra/moviesbyvivek/internal/gateway"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
	"github.com/vivekyarra/moviesbyvivek/internal/queue"
)

// ShowtimeStore is the catalog view the booking core reads, plus the
// narrow admin writes it owns.
type ShowtimeStore interface {
	GetShowtime(ctx context.Context, id uint64) (*model.Showtime, error)
	// ListShowtimes returns the showtimes of a movie on a date, creating
	// them from every theatre's show times on first request.
	ListShowtimes(ctx context.Context, movieID uint64, date string) ([]model.Showtime, error)
	CreateShowtime(ctx context.Context, st *model.Showtime) error
	// UpdateLayout fails with model.ErrLayoutLocked once seats of the
	// showtime are sold or held.
	UpdateLayout(ctx context.Context, id uint64, layout model.Layout) error
}

// Ledger is the authoritative record of which claim owns which seat.
type Ledger interface {
	TryClaim(ctx context.Context, req model.ClaimRequest) (*model.Claim, error)
	Release(ctx context.Context, showtimeID uint64, claimID string) (int, error)
}

// Settler turns a live claim into a booking atomically.  It returns the
// stored booking when the order was already paid, a
// *model.SeatConflictError when the claim lost seats, and
// model.ErrVerificationFailed when the order already failed.
type Settler interface {
	Settle(ctx context.Context, s model.Settlement) (*model.Booking, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *model.PaymentOrder) error
	GetOrderForUser(ctx context.Context, orderID string, userID uint64) (*model.PaymentOrder, error)
	// MarkOrderFailed moves a created order to failed and reports
	// whether it did.
	MarkOrderFailed(ctx context.Context, orderID string, userID uint64) (bool, error)
}

type BookingStore interface {
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	GetBookingForUser(ctx context.Context, id string, userID uint64) (*model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	OccupiedSeats(ctx context.Context, showtimeID uint64, includeHeld bool) ([]string, error)
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error)
}

type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}
