package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// BookingRepo reads bookings and the sold/held seat projection.  Writes
// happen only inside LedgerRepo.Settle.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, showtime_id, order_id, movie_title, theatre_name, show_date,
	show_time, seats, amount, currency, status, payment_id, payment_provider, created_at`

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b         model.Booking
		seatsRaw  []byte
		paymentID sql.NullString
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.ShowtimeID, &b.OrderID, &b.MovieTitle, &b.TheatreName,
		&b.Date, &b.Time, &seatsRaw, &b.Amount, &b.Currency, &b.Status, &paymentID,
		&b.PaymentProvider, &b.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(seatsRaw, &b.Seats); err != nil {
		return nil, err
	}
	if paymentID.Valid {
		v := paymentID.String
		b.PaymentID = &v
	}
	b.DateTime = model.ShowtimeSnapshot{Date: b.Date, Time: b.Time}.DateTime()
	return &b, nil
}

func getBooking(ctx context.Context, q rowQueryer, where string, args ...interface{}) (*model.Booking, error) {
	b, err := scanBooking(q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings `+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBookingNotFound
	}
	return b, err
}

func (r *BookingRepo) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return getBooking(ctx, r.db, `WHERE id = ?`, id)
}

func (r *BookingRepo) GetBookingForUser(ctx context.Context, id string, userID uint64) (*model.Booking, error) {
	return getBooking(ctx, r.db, `WHERE id = ? AND user_id = ?`, id, userID)
}

// ListBookingsByUser returns newest first.
func (r *BookingRepo) ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// OccupiedSeats returns sold seats, plus live holds when includeHeld.
func (r *BookingRepo) OccupiedSeats(ctx context.Context, showtimeID uint64, includeHeld bool) ([]string, error) {
	q := `SELECT seat_code FROM seat_claims WHERE showtime_id = ? AND status = 'SOLD'`
	if includeHeld {
		q = `SELECT seat_code FROM seat_claims
		      WHERE showtime_id = ? AND (status = 'SOLD' OR expires_at > UTC_TIMESTAMP(6))`
	}
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		seats = append(seats, code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	model.SortSeats(seats)
	return seats, nil
}
