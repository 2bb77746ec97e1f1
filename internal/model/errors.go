package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrShowtimeNotFound   = errors.New("showtime not found")
	ErrMovieNotFound      = errors.New("movie not found")
	ErrTheatreNotFound    = errors.New("theatre not found")
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidSignature   = errors.New("invalid payment signature")
	ErrVerificationFailed = errors.New("payment order already failed")
	ErrLayoutLocked       = errors.New("layout cannot change once seats are sold or held")
	ErrShowtimeExists     = errors.New("showtime already exists")
	ErrInvalidLayout      = errors.New("invalid seat layout")
	ErrNoSeats            = errors.New("no seats selected")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
	ErrOrderNotOpen       = errors.New("payment order is no longer open")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// SeatConflictError reports the seats that another live claim or a
// confirmed booking already owns.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return "seats unavailable: " + strings.Join(e.Seats, ", ")
}

// PricingMismatchError is returned when the amount a client submitted
// differs from the layout price of the seats it picked.
type PricingMismatchError struct {
	Expected  int64
	Submitted int64
}

func (e *PricingMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %d, got %d", e.Expected, e.Submitted)
}

// UnknownSeatError names a seat code the layout does not contain.
type UnknownSeatError struct {
	Seat string
}

func (e *UnknownSeatError) Error() string {
	return fmt.Sprintf("unknown seat %q", e.Seat)
}

// ConflictSeats returns the seats carried by a SeatConflictError
// anywhere in err's chain.
func ConflictSeats(err error) ([]string, bool) {
	var ce *SeatConflictError
	if errors.As(err, &ce) {
		return ce.Seats, true
	}
	return nil, false
}
