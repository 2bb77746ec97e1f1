package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vivekyarra/moviesbyvivek/internal/gateway"
	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
	"github.com/vivekyarra/moviesbyvivek/internal/queue"
	"github.com/vivekyarra/moviesbyvivek/internal/repository/memory"
)

const testSecret = "rzp_secret"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type failingGateway struct{}

func (failingGateway) CreateOrder(context.Context, gateway.OrderRequest) (*gateway.Order, error) {
	return nil, errors.New("connection reset")
}

type fixture struct {
	clock    *fakeClock
	store    *memory.Store
	signer   *gateway.Signer
	events   *recordingPublisher
	coord    *OrderCoordinator
	verifier *PaymentVerifier
	showtime *model.Showtime
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)}
	store := memory.New(memory.WithClock(clock.Now))
	movie := store.AddMovie("Dune: Part Two")
	theatre := store.AddTheatre("PVR Phoenix", "Bengaluru", []string{"10:30 AM"})

	st := &model.Showtime{MovieID: movie.ID, TheatreID: theatre.ID, Date: "2025-01-02", Time: "10:30 AM", Layout: model.DefaultLayout()}
	require.NoError(t, store.CreateShowtime(context.Background(), st))
	st, err := store.GetShowtime(context.Background(), st.ID)
	require.NoError(t, err)

	f := &fixture{
		clock:    clock,
		store:    store,
		signer:   gateway.NewSigner(testSecret),
		events:   &recordingPublisher{},
		showtime: st,
	}
	f.coord = NewOrderCoordinator(store, store, store, gateway.SandboxClient{}, 12*time.Minute, "INR", logger.Discard())
	f.verifier = NewPaymentVerifier(f.signer, store, store, store, NewBookingFactory(), nil, f.events, logger.Discard())
	return f
}

func (f *fixture) open(t *testing.T, userID uint64, amount int64, seats ...string) *model.PaymentOrder {
	t.Helper()
	o, err := f.coord.OpenOrder(context.Background(), OpenOrderInput{
		UserID: userID, ShowtimeID: f.showtime.ID, Seats: seats, Amount: amount,
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) confirm(userID uint64, orderID, paymentID string) (*model.Booking, error) {
	return f.verifier.Confirm(context.Background(), ConfirmInput{
		UserID:            userID,
		OrderID:           orderID,
		ProviderPaymentID: paymentID,
		Signature:         f.signer.Sign(orderID, paymentID),
	})
}
