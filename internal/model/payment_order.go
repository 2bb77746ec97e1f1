package model

import "time"

// OrderStatus is the lifecycle state of a payment order.  Transitions
// only move forward: created -> paid or created -> failed.
type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

// PaymentOrder is the intent-to-pay record created with the gateway
// after the seats were claimed.
//
// Fields:
//
//	OrderID           – gateway-assigned order id, primary key.
//	ClaimID           – ledger claim reserving the seats; also the
//	                    receipt sent to the gateway.
//	UserID            – customer who opened the order.
//	ShowtimeID        – showtime the seats belong to.
//	Seats             – canonical seat list.
//	Amount            – total price in major currency units.
//	Currency          – ISO currency code.
//	Status            – created, paid or failed.
//	ProviderPaymentID – gateway payment id once a confirmation arrived.
//	BookingID         – booking materialized from this order, if paid.
//	Snapshot          – showtime fields captured at claim time.
//	ClaimExpiresAt    – when the seat claim lapses.
type PaymentOrder struct {
	OrderID           string           // payment_orders.order_id
	ClaimID           string           // payment_orders.claim_id
	UserID            uint64           // payment_orders.user_id
	ShowtimeID        uint64           // payment_orders.showtime_id
	Seats             []string         // payment_orders.seats (JSON)
	Amount            int64            // payment_orders.amount
	Currency          string           // payment_orders.currency
	Status            OrderStatus      // payment_orders.status
	ProviderPaymentID *string          // payment_orders.provider_payment_id (nullable)
	BookingID         *string          // payment_orders.booking_id (nullable)
	Snapshot          ShowtimeSnapshot // payment_orders.movie_title, theatre_name, show_date, show_time
	ClaimExpiresAt    time.Time        // payment_orders.claim_expires_at
	CreatedAt         time.Time        // payment_orders.created_at
	UpdatedAt         time.Time        // payment_orders.updated_at
}
