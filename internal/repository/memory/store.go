// Package memory is an in-process implementation of every booking store.
// It backs STORE_DRIVER=memory and the service tests.  Seat state is
// guarded by one mutex per showtime, mirroring the row locks the MySQL
// ledger takes.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

type seatEntry struct {
	claimID   string
	status    model.ClaimStatus
	expiresAt time.Time
	bookingID string
}

type showLedger struct {
	mu    sync.Mutex
	seats map[string]*seatEntry
}

// Store keeps catalog, ledger, orders and bookings in maps.  Lock order
// is always showtime ledger first, then mu.
type Store struct {
	now func() time.Time

	mu             sync.RWMutex
	movies         map[uint64]model.Movie
	theatres       map[uint64]model.Theatre
	showtimes      map[uint64]*model.Showtime
	orders         map[string]*model.PaymentOrder
	bookings       map[string]*model.Booking
	nextMovieID    uint64
	nextTheatreID  uint64
	nextShowtimeID uint64

	ledgersMu sync.Mutex
	ledgers   map[uint64]*showLedger
}

type Option func(*Store)

// WithClock replaces time.Now, letting tests move past claim expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		movies:    map[uint64]model.Movie{},
		theatres:  map[uint64]model.Theatre{},
		showtimes: map[uint64]*model.Showtime{},
		orders:    map[string]*model.PaymentOrder{},
		bookings:  map[string]*model.Booking{},
		ledgers:   map[uint64]*showLedger{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) AddMovie(title string) model.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMovieID++
	m := model.Movie{ID: s.nextMovieID, Title: title}
	s.movies[m.ID] = m
	return m
}

func (s *Store) AddTheatre(name, city string, showTimes []string) model.Theatre {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTheatreID++
	t := model.Theatre{ID: s.nextTheatreID, Name: name, City: city, ShowTimes: append([]string(nil), showTimes...)}
	s.theatres[t.ID] = t
	return t
}

// ledger returns the seat map of an existing showtime, creating it on
// first use.  Unknown ids never get an entry.
func (s *Store) ledger(showtimeID uint64) (*showLedger, bool) {
	s.ledgersMu.Lock()
	defer s.ledgersMu.Unlock()
	if l, ok := s.ledgers[showtimeID]; ok {
		return l, true
	}
	s.mu.RLock()
	_, exists := s.showtimes[showtimeID]
	s.mu.RUnlock()
	if !exists {
		return nil, false
	}
	l := &showLedger{seats: map[string]*seatEntry{}}
	s.ledgers[showtimeID] = l
	return l, true
}

// showtimeLocked assumes mu is held.
func (s *Store) showtimeLocked(id uint64) (*model.Showtime, bool) {
	st, ok := s.showtimes[id]
	if !ok {
		return nil, false
	}
	out := *st
	out.Layout = st.Layout.Clone()
	out.MovieTitle = s.movies[st.MovieID].Title
	out.TheatreName = s.theatres[st.TheatreID].Name
	return &out, true
}

func (s *Store) GetShowtime(_ context.Context, id uint64) (*model.Showtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.showtimeLocked(id)
	if !ok {
		return nil, model.ErrShowtimeNotFound
	}
	return st, nil
}

func (s *Store) ListShowtimes(_ context.Context, movieID uint64, date string) ([]model.Showtime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[movieID]; !ok {
		return nil, model.ErrMovieNotFound
	}

	var ids []uint64
	for id, st := range s.showtimes {
		if st.MovieID == movieID && st.Date == date {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		theatreIDs := make([]uint64, 0, len(s.theatres))
		for id := range s.theatres {
			theatreIDs = append(theatreIDs, id)
		}
		sort.Slice(theatreIDs, func(i, j int) bool { return theatreIDs[i] < theatreIDs[j] })
		now := s.now().UTC()
		for _, tid := range theatreIDs {
			for _, t := range s.theatres[tid].ShowTimes {
				s.nextShowtimeID++
				s.showtimes[s.nextShowtimeID] = &model.Showtime{
					ID: s.nextShowtimeID, MovieID: movieID, TheatreID: tid,
					Date: date, Time: t, Layout: model.DefaultLayout(),
					CreatedAt: now, UpdatedAt: now,
				}
				ids = append(ids, s.nextShowtimeID)
			}
		}
	}

	out := make([]model.Showtime, 0, len(ids))
	for _, id := range ids {
		st, _ := s.showtimeLocked(id)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TheatreName != out[j].TheatreName {
			return out[i].TheatreName < out[j].TheatreName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateShowtime(_ context.Context, st *model.Showtime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[st.MovieID]; !ok {
		return model.ErrMovieNotFound
	}
	if _, ok := s.theatres[st.TheatreID]; !ok {
		return model.ErrTheatreNotFound
	}
	for _, cur := range s.showtimes {
		if cur.MovieID == st.MovieID && cur.TheatreID == st.TheatreID && cur.Date == st.Date && cur.Time == st.Time {
			return model.ErrShowtimeExists
		}
	}
	s.nextShowtimeID++
	now := s.now().UTC()
	stored := *st
	stored.ID = s.nextShowtimeID
	stored.Layout = st.Layout.Clone()
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.showtimes[stored.ID] = &stored
	st.ID = stored.ID
	return nil
}

func (s *Store) UpdateLayout(_ context.Context, id uint64, layout model.Layout) error {
	l, ok := s.ledger(id)
	if !ok {
		return model.ErrShowtimeNotFound
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.showtimes[id]
	if !ok {
		return model.ErrShowtimeNotFound
	}
	now := s.now()
	for _, e := range l.seats {
		if e.status == model.ClaimSold || now.Before(e.expiresAt) {
			return model.ErrLayoutLocked
		}
	}
	st.Layout = layout.Clone()
	st.UpdatedAt = now.UTC()
	return nil
}

// TryClaim reserves every requested seat or none.  Expired holds are
// overwritten in place; re-claiming seats the same claim already holds
// extends them.
func (s *Store) TryClaim(_ context.Context, req model.ClaimRequest) (*model.Claim, error) {
	seats := model.NormalizeSeats(req.Seats)
	if len(seats) == 0 {
		return nil, model.ErrNoSeats
	}
	l, ok := s.ledger(req.ShowtimeID)
	if !ok {
		return nil, model.ErrShowtimeNotFound
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := s.now()
	var conflicts []string
	for _, code := range seats {
		e, taken := l.seats[code]
		if !taken {
			continue
		}
		if e.status == model.ClaimSold || (e.claimID != req.ClaimID && now.Before(e.expiresAt)) {
			conflicts = append(conflicts, code)
		}
	}
	if len(conflicts) > 0 {
		return nil, &model.SeatConflictError{Seats: conflicts}
	}

	expires := now.Add(req.TTL)
	for _, code := range seats {
		l.seats[code] = &seatEntry{claimID: req.ClaimID, status: model.ClaimHeld, expiresAt: expires}
	}
	return &model.Claim{ShowtimeID: req.ShowtimeID, ClaimID: req.ClaimID, Seats: seats, ExpiresAt: expires}, nil
}

func (s *Store) Release(_ context.Context, showtimeID uint64, claimID string) (int, error) {
	l, ok := s.ledger(showtimeID)
	if !ok {
		return 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return releaseLocked(l, claimID), nil
}

func releaseLocked(l *showLedger, claimID string) int {
	n := 0
	for code, e := range l.seats {
		if e.claimID == claimID && e.status == model.ClaimHeld {
			delete(l.seats, code)
			n++
		}
	}
	return n
}

func (s *Store) CreateOrder(_ context.Context, o *model.PaymentOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.orders[o.OrderID]; dup {
		return fmt.Errorf("order %s already exists", o.OrderID)
	}
	now := s.now().UTC()
	stored := copyOrder(o)
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.orders[o.OrderID] = stored
	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

func (s *Store) GetOrderForUser(_ context.Context, orderID string, userID uint64) (*model.PaymentOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (s *Store) MarkOrderFailed(_ context.Context, orderID string, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID {
		return false, model.ErrOrderNotFound
	}
	if o.Status != model.OrderCreated {
		return false, nil
	}
	o.Status = model.OrderFailed
	o.UpdatedAt = s.now().UTC()
	return true, nil
}

// Settle validates the claim and writes booking, seat and order state
// under the showtime lock.
func (s *Store) Settle(_ context.Context, st model.Settlement) (*model.Booking, error) {
	l, ok := s.ledger(st.Order.ShowtimeID)
	if !ok {
		return nil, model.ErrShowtimeNotFound
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[st.Order.OrderID]
	if !ok || o.UserID != st.Order.UserID {
		return nil, model.ErrOrderNotFound
	}
	switch o.Status {
	case model.OrderPaid:
		if o.BookingID == nil {
			return nil, model.ErrVerificationFailed
		}
		return copyBooking(s.bookings[*o.BookingID]), nil
	case model.OrderFailed:
		return nil, model.ErrVerificationFailed
	}

	now := s.now()
	paymentID := st.PaymentID
	var lost []string
	for _, code := range o.Seats {
		e, held := l.seats[code]
		if !held || e.claimID != o.ClaimID || e.status != model.ClaimHeld || !now.Before(e.expiresAt) {
			lost = append(lost, code)
		}
	}
	if len(lost) > 0 {
		o.Status = model.OrderFailed
		o.ProviderPaymentID = &paymentID
		o.UpdatedAt = now.UTC()
		releaseLocked(l, o.ClaimID)
		return nil, &model.SeatConflictError{Seats: lost}
	}

	b := copyBooking(st.Booking)
	s.bookings[b.ID] = b
	for _, code := range o.Seats {
		l.seats[code] = &seatEntry{claimID: o.ClaimID, status: model.ClaimSold, bookingID: b.ID}
	}
	bookingID := b.ID
	o.Status = model.OrderPaid
	o.BookingID = &bookingID
	o.ProviderPaymentID = &paymentID
	o.UpdatedAt = now.UTC()
	return copyBooking(b), nil
}

func (s *Store) GetBooking(_ context.Context, id string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

func (s *Store) GetBookingForUser(_ context.Context, id string, userID uint64) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok || b.UserID != userID {
		return nil, model.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

func (s *Store) ListBookingsByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) OccupiedSeats(_ context.Context, showtimeID uint64, includeHeld bool) ([]string, error) {
	out := []string{}
	l, ok := s.ledger(showtimeID)
	if !ok {
		return out, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := s.now()
	for code, e := range l.seats {
		if e.status == model.ClaimSold || (includeHeld && now.Before(e.expiresAt)) {
			out = append(out, code)
		}
	}
	model.SortSeats(out)
	return out, nil
}

func copyOrder(o *model.PaymentOrder) *model.PaymentOrder {
	out := *o
	out.Seats = append([]string(nil), o.Seats...)
	if o.BookingID != nil {
		v := *o.BookingID
		out.BookingID = &v
	}
	if o.ProviderPaymentID != nil {
		v := *o.ProviderPaymentID
		out.ProviderPaymentID = &v
	}
	return &out
}

func copyBooking(b *model.Booking) *model.Booking {
	out := *b
	out.Seats = append([]string(nil), b.Seats...)
	if b.PaymentID != nil {
		v := *b.PaymentID
		out.PaymentID = &v
	}
	return &out
}
