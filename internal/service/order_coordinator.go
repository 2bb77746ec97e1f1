package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vivekyarra/moviesbyvivek/internal/gateway"
	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// OpenOrderInput is what a client submits to start checkout.  Amount is
// the total the client displayed, in major units.
type OpenOrderInput struct {
	UserID     uint64
	ShowtimeID uint64
	Seats      []string
	Amount     int64
}

// OrderCoordinator turns a seat selection into a claimed, payable order.
type OrderCoordinator struct {
	showtimes ShowtimeStore
	ledger    Ledger
	orders    OrderStore
	gateway   PaymentGateway
	claimTTL  time.Duration
	currency  string
	newID     func() string
	log       *logger.Logger
}

func NewOrderCoordinator(showtimes ShowtimeStore, ledger Ledger, orders OrderStore, gw PaymentGateway, claimTTL time.Duration, currency string, log *logger.Logger) *OrderCoordinator {
	if log == nil {
		log = logger.GetDefault()
	}
	return &OrderCoordinator{
		showtimes: showtimes,
		ledger:    ledger,
		orders:    orders,
		gateway:   gw,
		claimTTL:  claimTTL,
		currency:  currency,
		newID:     uuid.NewString,
		log:       log,
	}
}

// OpenOrder prices the seats, claims them, and opens a gateway order.
// The claim is taken before the gateway call so two buyers can never
// both be charged for one seat.  When the gateway or the order insert
// fails the claim is released; if even that fails it simply expires.
func (c *OrderCoordinator) OpenOrder(ctx context.Context, in OpenOrderInput) (*model.PaymentOrder, error) {
	st, err := c.showtimes.GetShowtime(ctx, in.ShowtimeID)
	if err != nil {
		return nil, err
	}
	total, seats, err := QuoteSeats(ResolveLayout(st), in.Seats)
	if err != nil {
		return nil, err
	}
	if total != in.Amount {
		return nil, &model.PricingMismatchError{Expected: total, Submitted: in.Amount}
	}

	claimID := c.newID()
	claim, err := c.ledger.TryClaim(ctx, model.ClaimRequest{
		ShowtimeID: st.ID,
		Seats:      seats,
		ClaimID:    claimID,
		TTL:        c.claimTTL,
	})
	if err != nil {
		if lost, ok := model.ConflictSeats(err); ok {
			c.log.LogSeatConflict(ctx, st.ID, lost)
		}
		return nil, err
	}

	gwOrder, err := c.gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   gateway.MinorUnits(total),
		Currency: c.currency,
		Receipt:  claimID,
	})
	if err != nil {
		c.release(st.ID, claimID)
		if errors.Is(err, model.ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}

	order := &model.PaymentOrder{
		OrderID:        gwOrder.ID,
		ClaimID:        claimID,
		UserID:         in.UserID,
		ShowtimeID:     st.ID,
		Seats:          seats,
		Amount:         total,
		Currency:       c.currency,
		Status:         model.OrderCreated,
		Snapshot:       st.Snapshot(),
		ClaimExpiresAt: claim.ExpiresAt,
	}
	if err := c.orders.CreateOrder(ctx, order); err != nil {
		c.release(st.ID, claimID)
		return nil, fmt.Errorf("save order: %w", err)
	}
	c.log.LogOrderOpened(ctx, order.OrderID, claimID, in.UserID, st.ID, seats, total)
	return order, nil
}

// release runs detached from the request context so a cancelled client
// does not leave its seats blocked until expiry.
func (c *OrderCoordinator) release(showtimeID uint64, claimID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.ledger.Release(ctx, showtimeID, claimID); err != nil {
		c.log.Warn("claim release failed, leaving it to expire",
			"showtime_id", showtimeID, "claim_id", claimID, "error", err)
	}
}

// GetOrder returns one of the caller's orders.
func (c *OrderCoordinator) GetOrder(ctx context.Context, userID uint64, orderID string) (*model.PaymentOrder, error) {
	return c.orders.GetOrderForUser(ctx, orderID, userID)
}

// CancelOrder abandons an unpaid order and frees its seats.  Paid orders
// cannot be cancelled here.
func (c *OrderCoordinator) CancelOrder(ctx context.Context, userID uint64, orderID string) error {
	order, err := c.orders.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if order.Status != model.OrderCreated {
		return model.ErrOrderNotOpen
	}
	ok, err := c.orders.MarkOrderFailed(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrOrderNotOpen
	}
	if _, err := c.ledger.Release(ctx, order.ShowtimeID, order.ClaimID); err != nil {
		c.log.Warn("claim release failed, leaving it to expire",
			"order_id", orderID, "claim_id", order.ClaimID, "error", err)
	}
	return nil
}
