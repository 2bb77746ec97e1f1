package model

import "time"

const (
	BookingConfirmed = "confirmed"
	ProviderRazorpay = "razorpay"
)

// Booking is the durable, immutable record that a user owns a set of
// seats for a showtime.  It is created only from a successfully
// verified payment and copies the showtime details captured when the
// seats were claimed.
type Booking struct {
	ID              string    `json:"id"`
	UserID          uint64    `json:"user_id"`
	ShowtimeID      uint64    `json:"showtime_id"`
	OrderID         string    `json:"order_id"`
	MovieTitle      string    `json:"movie_title"`
	TheatreName     string    `json:"theatre"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	DateTime        string    `json:"datetime"`
	Seats           []string  `json:"seats"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	PaymentID       *string   `json:"payment_id,omitempty"`
	PaymentProvider string    `json:"payment_provider"`
	CreatedAt       time.Time `json:"created_at"`
}
