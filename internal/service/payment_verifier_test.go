package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

func TestConfirmCreatesBooking(t *testing.T) {
	f := newFixture(t)
	o := f.open(t, 1, 1100+350+210, "G1", "C1", "A1")

	b, err := f.confirm(1, o.OrderID, "pay_1")
	require.NoError(t, err)

	assert.Equal(t, o.OrderID, b.OrderID)
	assert.Equal(t, []string{"A1", "C1", "G1"}, b.Seats)
	assert.Equal(t, o.Amount, b.Amount)
	assert.Equal(t, int64(1660), b.Amount)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, "pay_1", *b.PaymentID)
	assert.Equal(t, "2025-01-02 • 10:30 AM", b.DateTime)

	got, err := f.coord.GetOrder(context.Background(), 1, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaid, got.Status)
	assert.Equal(t, b.ID, *got.BookingID)

	sold, _ := f.store.OccupiedSeats(context.Background(), f.showtime.ID, false)
	assert.Equal(t, []string{"A1", "C1", "G1"}, sold)
	assert.Equal(t, 1, f.events.count())
}

func TestConfirmIsIdempotent(t *testing.T) {
	f := newFixture(t)
	o := f.open(t, 1, 1100, "A5")

	first, err := f.confirm(1, o.OrderID, "pay_1")
	require.NoError(t, err)
	second, err := f.confirm(1, o.OrderID, "pay_1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	list, _ := f.store.ListBookingsByUser(context.Background(), 1)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, f.events.count())
}

func TestConfirmConcurrentDuplicatesYieldOneBooking(t *testing.T) {
	f := newFixture(t)
	o := f.open(t, 1, 1100, "B4")

	const callbacks = 10
	ids := make([]string, callbacks)
	var wg sync.WaitGroup
	for i := 0; i < callbacks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := f.confirm(1, o.OrderID, "pay_1")
			if assert.NoError(t, err) {
				ids[i] = b.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	list, _ := f.store.ListBookingsByUser(context.Background(), 1)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, f.events.count())
}

func TestConfirmRejectsTamperedSignature(t *testing.T) {
	f := newFixture(t)
	o := f.open(t, 1, 1100, "A6")

	_, err := f.verifier.Confirm(context.Background(), ConfirmInput{
		UserID: 1, OrderID: o.OrderID, ProviderPaymentID: "pay_1",
		Signature: f.signer.Sign(o.OrderID, "pay_2"),
	})
	assert.ErrorIs(t, err, model.ErrInvalidSignature)

	got, _ := f.coord.GetOrder(context.Background(), 1, o.OrderID)
	assert.Equal(t, model.OrderCreated, got.Status)
	list, _ := f.store.ListBookingsByUser(context.Background(), 1)
	assert.Empty(t, list)

	_, err = f.confirm(1, o.OrderID, "pay_1")
	assert.NoError(t, err)
}

func TestConfirmUnknownOrOtherUsersOrder(t *testing.T) {
	f := newFixture(t)
	o := f.open(t, 1, 1100, "A7")

	_, err := f.confirm(2, o.OrderID, "pay_1")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
	_, err = f.confirm(1, "order_missing", "pay_1")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

// U1 holds A1,A2; U2 asks for A2,A3 and is refused with A2; U1 pays.
func TestRaceForOverlappingSeats(t *testing.T) {
	f := newFixture(t)
	o1 := f.open(t, 1, 2200, "A1", "A2")

	_, err := f.coord.OpenOrder(context.Background(), OpenOrderInput{
		UserID: 2, ShowtimeID: f.showtime.ID, Seats: []string{"A2", "A3"}, Amount: 2200,
	})
	seats, ok := model.ConflictSeats(err)
	require.True(t, ok)
	assert.Equal(t, []string{"A2"}, seats)

	b, err := f.confirm(1, o1.OrderID, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, b.Seats)

	sold, _ := f.store.OccupiedSeats(context.Background(), f.showtime.ID, false)
	assert.Equal(t, []string{"A1", "A2"}, sold)
}

// U1's claim lapses, U2 takes the seat and pays, U1's late payment is
// refused and the order fails for good.
func TestLatePaymentAfterExpiry(t *testing.T) {
	f := newFixture(t)
	o1 := f.open(t, 1, 350, "C5")

	f.clock.Advance(13 * time.Minute)
	o2 := f.open(t, 2, 350, "C5")
	_, err := f.confirm(2, o2.OrderID, "pay_2")
	require.NoError(t, err)

	_, err = f.confirm(1, o1.OrderID, "pay_1")
	seats, ok := model.ConflictSeats(err)
	require.True(t, ok)
	assert.Equal(t, []string{"C5"}, seats)

	got, _ := f.coord.GetOrder(context.Background(), 1, o1.OrderID)
	assert.Equal(t, model.OrderFailed, got.Status)
	assert.Equal(t, "pay_1", *got.ProviderPaymentID)

	_, err = f.confirm(1, o1.OrderID, "pay_1")
	assert.ErrorIs(t, err, model.ErrVerificationFailed)

	list, _ := f.store.ListBookingsByUser(context.Background(), 1)
	assert.Empty(t, list)
}

func TestLapsedClaimWithoutCompetitorStillFails(t *testing.T) {
	f := newFixture(t)
	o := f.open(t, 1, 350, "C6")

	f.clock.Advance(12 * time.Minute)
	_, err := f.confirm(1, o.OrderID, "pay_1")
	_, ok := model.ConflictSeats(err)
	assert.True(t, ok)

	held, _ := f.store.OccupiedSeats(context.Background(), f.showtime.ID, true)
	assert.Empty(t, held)
}

func TestConfirmInvalidatesOccupancyCache(t *testing.T) {
	f := newFixture(t)
	rdb, mock := redismock.NewClientMock()
	view := NewOccupancyView(f.store, f.store, rdb, 30*time.Second, logger.Discard())
	verifier := NewPaymentVerifier(f.signer, f.store, f.store, f.store, NewBookingFactory(), view, nil, logger.Discard())

	o := f.open(t, 1, 210, "J1")
	mock.ExpectDel(occupancyKey(f.showtime.ID)).SetVal(1)

	_, err := verifier.Confirm(context.Background(), ConfirmInput{
		UserID: 1, OrderID: o.OrderID, ProviderPaymentID: "pay_1", Signature: f.signer.Sign(o.OrderID, "pay_1"),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
