package model

import "time"

// ClaimStatus is the state of one seat row in the ledger.
type ClaimStatus string

const (
	// ClaimHeld marks a seat reserved for a pending payment order until
	// its expiry passes.
	ClaimHeld ClaimStatus = "HELD"
	// ClaimSold marks a seat bought by a confirmed booking.  Sold rows
	// never expire.
	ClaimSold ClaimStatus = "SOLD"
)

// ClaimRequest asks the ledger to reserve Seats of a showtime for
// ClaimID for the duration of TTL.
type ClaimRequest struct {
	ShowtimeID uint64
	Seats      []string
	ClaimID    string
	TTL        time.Duration
}

// Claim is a time-boxed exclusive reservation of a set of seats on a
// single showtime.  A claim is live while the current time is before
// ExpiresAt; after that it no longer blocks anyone, even if its rows
// have not been cleaned up yet.
type Claim struct {
	ShowtimeID uint64
	ClaimID    string
	Seats      []string
	ExpiresAt  time.Time
}

// Live reports whether the claim still holds its seats at now.
func (c *Claim) Live(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// Settlement carries everything the ledger needs to turn a live claim
// into a confirmed booking in one atomic step.
type Settlement struct {
	Order     *PaymentOrder
	PaymentID string
	Booking   *Booking
}
