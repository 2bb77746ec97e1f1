package service

import (
	"context"
	"errors"
	"time"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
	"github.com/vivekyarra/moviesbyvivek/internal/queue"
)

// ConfirmInput is the gateway's success callback as forwarded by the
// client.
type ConfirmInput struct {
	UserID            uint64
	OrderID           string
	ProviderPaymentID string
	Signature         string
}

// PaymentVerifier confirms payments into bookings exactly once per order.
type PaymentVerifier struct {
	signer    SignatureVerifier
	orders    OrderStore
	bookings  BookingStore
	settler   Settler
	factory   *BookingFactory
	occupancy *OccupancyView
	events    EventPublisher
	log       *logger.Logger
}

// NewPaymentVerifier accepts nil occupancy and events.
func NewPaymentVerifier(signer SignatureVerifier, orders OrderStore, bookings BookingStore, settler Settler, factory *BookingFactory, occupancy *OccupancyView, events EventPublisher, log *logger.Logger) *PaymentVerifier {
	if log == nil {
		log = logger.GetDefault()
	}
	if factory == nil {
		factory = NewBookingFactory()
	}
	return &PaymentVerifier{
		signer:    signer,
		orders:    orders,
		bookings:  bookings,
		settler:   settler,
		factory:   factory,
		occupancy: occupancy,
		events:    events,
		log:       log,
	}
}

// Confirm verifies the signature and settles the order.  Repeating a
// successful confirmation returns the booking already stored.  A bad
// signature changes nothing.  An order whose claim lapsed or lost seats
// is failed permanently.
func (v *PaymentVerifier) Confirm(ctx context.Context, in ConfirmInput) (*model.Booking, error) {
	if !v.signer.Verify(in.OrderID, in.ProviderPaymentID, in.Signature) {
		v.log.LogPaymentRejected(ctx, in.OrderID, "signature mismatch")
		return nil, model.ErrInvalidSignature
	}

	order, err := v.orders.GetOrderForUser(ctx, in.OrderID, in.UserID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case model.OrderPaid:
		return v.existingBooking(ctx, order)
	case model.OrderFailed:
		return nil, model.ErrVerificationFailed
	}

	booking := v.factory.Materialize(order, order.Snapshot, in.ProviderPaymentID)
	settled, err := v.settler.Settle(ctx, model.Settlement{
		Order:     order,
		PaymentID: in.ProviderPaymentID,
		Booking:   booking,
	})
	if err != nil {
		if lost, ok := model.ConflictSeats(err); ok {
			v.log.LogPaidSeatsLost(ctx, order.OrderID, in.ProviderPaymentID, lost)
		} else if errors.Is(err, model.ErrVerificationFailed) {
			v.log.LogPaymentRejected(ctx, order.OrderID, "order already failed")
		}
		return nil, err
	}

	// A concurrent confirm may have won the race; only the winner's
	// booking id matches ours and only the winner announces it.
	if settled.ID == booking.ID {
		v.afterSettle(ctx, settled)
	}
	return settled, nil
}

func (v *PaymentVerifier) existingBooking(ctx context.Context, order *model.PaymentOrder) (*model.Booking, error) {
	if order.BookingID == nil {
		return nil, model.ErrVerificationFailed
	}
	return v.bookings.GetBooking(ctx, *order.BookingID)
}

func (v *PaymentVerifier) afterSettle(ctx context.Context, b *model.Booking) {
	v.log.LogBookingConfirmed(ctx, b.ID, b.OrderID, b.UserID, b.ShowtimeID)
	if v.occupancy != nil {
		v.occupancy.Invalidate(ctx, b.ShowtimeID)
	}
	if v.events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := v.events.PublishBookingConfirmed(pubCtx, queue.NewBookingConfirmedEvent(b)); err != nil {
		v.log.Warn("publish booking.confirmed failed", "booking_id", b.ID, "error", err)
	}
}
