// Package gateway talks to the payment provider: creating orders and
// checking the signature the provider attaches to a completed payment.
package gateway

// OrderRequest asks the provider to open an order.  Amount is in the
// currency's minor unit (paise for INR).
type OrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Order is the provider's view of an opened order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// MinorUnits converts a major unit amount to the unit the provider bills in.
func MinorUnits(amount int64) int64 {
	return amount * 100
}
