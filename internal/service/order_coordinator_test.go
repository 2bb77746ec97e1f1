package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

func TestOpenOrderClaimsSeats(t *testing.T) {
	f := newFixture(t)

	o := f.open(t, 1, 2200, "A2", "a1")

	assert.Equal(t, model.OrderCreated, o.Status)
	assert.Equal(t, []string{"A1", "A2"}, o.Seats)
	assert.Equal(t, int64(2200), o.Amount)
	assert.Equal(t, "INR", o.Currency)
	assert.Equal(t, f.clock.Now().Add(12*time.Minute), o.ClaimExpiresAt)
	assert.Equal(t, "Dune: Part Two", o.Snapshot.MovieTitle)
	assert.NotEmpty(t, o.ClaimID)

	held, err := f.store.OccupiedSeats(context.Background(), f.showtime.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, held)
	sold, err := f.store.OccupiedSeats(context.Background(), f.showtime.ID, false)
	require.NoError(t, err)
	assert.Empty(t, sold)
}

func TestOpenOrderPricingMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.OpenOrder(context.Background(), OpenOrderInput{
		UserID: 1, ShowtimeID: f.showtime.ID, Seats: []string{"A1", "A2"}, Amount: 2000,
	})
	var mismatch *model.PricingMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, int64(2200), mismatch.Expected)
	assert.Equal(t, int64(2000), mismatch.Submitted)

	held, _ := f.store.OccupiedSeats(context.Background(), f.showtime.ID, true)
	assert.Empty(t, held)
}

func TestOpenOrderUnknownSeatAndShowtime(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.OpenOrder(context.Background(), OpenOrderInput{UserID: 1, ShowtimeID: f.showtime.ID, Seats: []string{"A11"}, Amount: 1100})
	var unknown *model.UnknownSeatError
	assert.True(t, errors.As(err, &unknown))

	_, err = f.coord.OpenOrder(context.Background(), OpenOrderInput{UserID: 1, ShowtimeID: 999, Seats: []string{"A1"}, Amount: 1100})
	assert.ErrorIs(t, err, model.ErrShowtimeNotFound)

	_, err = f.coord.OpenOrder(context.Background(), OpenOrderInput{UserID: 1, ShowtimeID: f.showtime.ID, Amount: 0})
	assert.ErrorIs(t, err, model.ErrNoSeats)
}

func TestOpenOrderConflictNamesOverlap(t *testing.T) {
	f := newFixture(t)
	f.open(t, 1, 2200, "A1", "A2")

	_, err := f.coord.OpenOrder(context.Background(), OpenOrderInput{
		UserID: 2, ShowtimeID: f.showtime.ID, Seats: []string{"A2", "A3"}, Amount: 2200,
	})
	seats, ok := model.ConflictSeats(err)
	require.True(t, ok)
	assert.Equal(t, []string{"A2"}, seats)
}

func TestOpenOrderPaddedSeatCodeIsSameSeat(t *testing.T) {
	f := newFixture(t)
	first := f.open(t, 1, 1100, "A1")

	for _, spelling := range []string{"A01", "a001", " A1 "} {
		_, err := f.coord.OpenOrder(context.Background(), OpenOrderInput{
			UserID: 2, ShowtimeID: f.showtime.ID, Seats: []string{spelling}, Amount: 1100,
		})
		seats, ok := model.ConflictSeats(err)
		require.True(t, ok, spelling)
		assert.Equal(t, []string{"A1"}, seats, spelling)
	}

	b, err := f.confirm(1, first.OrderID, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, b.Seats)

	_, err = f.coord.OpenOrder(context.Background(), OpenOrderInput{
		UserID: 2, ShowtimeID: f.showtime.ID, Seats: []string{"A01"}, Amount: 1100,
	})
	_, ok := model.ConflictSeats(err)
	assert.True(t, ok)

	sold, err := f.store.OccupiedSeats(context.Background(), f.showtime.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, sold)
}

func TestOpenOrderSignedColumnIsUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.OpenOrder(context.Background(), OpenOrderInput{
		UserID: 1, ShowtimeID: f.showtime.ID, Seats: []string{"A+1"}, Amount: 1100,
	})
	var unknown *model.UnknownSeatError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "A+1", unknown.Seat)
}

func TestOpenOrderGatewayFailureReleasesClaim(t *testing.T) {
	f := newFixture(t)
	broken := NewOrderCoordinator(f.store, f.store, f.store, failingGateway{}, 12*time.Minute, "INR", logger.Discard())

	_, err := broken.OpenOrder(context.Background(), OpenOrderInput{
		UserID: 1, ShowtimeID: f.showtime.ID, Seats: []string{"C1"}, Amount: 350,
	})
	assert.ErrorIs(t, err, model.ErrGatewayUnavailable)

	held, _ := f.store.OccupiedSeats(context.Background(), f.showtime.ID, true)
	assert.Empty(t, held)
	f.open(t, 2, 350, "C1")
}

func TestExpiredClaimNeverBlocks(t *testing.T) {
	f := newFixture(t)
	f.open(t, 1, 350, "D5")

	f.clock.Advance(12*time.Minute + time.Second)

	o := f.open(t, 2, 350, "D5")
	assert.Equal(t, uint64(2), o.UserID)
}

func TestConcurrentOverlappingClaimsOneWinner(t *testing.T) {
	f := newFixture(t)
	const buyers = 25

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		conflicts int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(user uint64) {
			defer wg.Done()
			_, err := f.coord.OpenOrder(context.Background(), OpenOrderInput{
				UserID: user, ShowtimeID: f.showtime.ID, Seats: []string{"E7", "E8"}, Amount: 700,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
			} else if _, ok := model.ConflictSeats(err); ok {
				conflicts++
			}
		}(uint64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, buyers-1, conflicts)
}

func TestCancelOrderFreesSeats(t *testing.T) {
	f := newFixture(t)
	o := f.open(t, 1, 1100, "B1")

	require.NoError(t, f.coord.CancelOrder(context.Background(), 1, o.OrderID))
	assert.ErrorIs(t, f.coord.CancelOrder(context.Background(), 1, o.OrderID), model.ErrOrderNotOpen)
	assert.ErrorIs(t, f.coord.CancelOrder(context.Background(), 2, o.OrderID), model.ErrOrderNotFound)

	got, err := f.coord.GetOrder(context.Background(), 1, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, got.Status)

	_, err = f.confirm(1, o.OrderID, "pay_1")
	assert.ErrorIs(t, err, model.ErrVerificationFailed)

	f.open(t, 2, 1100, "B1")
}
