package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// OrderRepo persists payment orders.  Status changes are conditional
// updates on status = 'created' so a row only ever moves forward.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) CreateOrder(ctx context.Context, o *model.PaymentOrder) error {
	seats, err := json.Marshal(o.Seats)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO payment_orders (order_id, claim_id, user_id, showtime_id, seats, amount, currency,
		   status, movie_title, theatre_name, show_date, show_time, claim_expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.ClaimID, o.UserID, o.ShowtimeID, string(seats), o.Amount, o.Currency,
		string(o.Status), o.Snapshot.MovieTitle, o.Snapshot.TheatreName, o.Snapshot.Date, o.Snapshot.Time,
		o.ClaimExpiresAt)
	if IsDuplicate(err) {
		return fmt.Errorf("order %s already exists: %w", o.OrderID, err)
	}
	return err
}

func (r *OrderRepo) GetOrderForUser(ctx context.Context, orderID string, userID uint64) (*model.PaymentOrder, error) {
	var (
		o         model.PaymentOrder
		seatsRaw  []byte
		status    string
		paymentID sql.NullString
		bookingID sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT order_id, claim_id, user_id, showtime_id, seats, amount, currency, status,
		        provider_payment_id, booking_id, movie_title, theatre_name, show_date, show_time,
		        claim_expires_at, created_at, updated_at
		   FROM payment_orders WHERE order_id = ? AND user_id = ?`,
		orderID, userID).Scan(&o.OrderID, &o.ClaimID, &o.UserID, &o.ShowtimeID, &seatsRaw, &o.Amount,
		&o.Currency, &status, &paymentID, &bookingID, &o.Snapshot.MovieTitle, &o.Snapshot.TheatreName,
		&o.Snapshot.Date, &o.Snapshot.Time, &o.ClaimExpiresAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(seatsRaw, &o.Seats); err != nil {
		return nil, fmt.Errorf("decode order seats: %w", err)
	}
	o.Status = model.OrderStatus(status)
	o.Snapshot.ShowtimeID = o.ShowtimeID
	if paymentID.Valid {
		v := paymentID.String
		o.ProviderPaymentID = &v
	}
	if bookingID.Valid {
		v := bookingID.String
		o.BookingID = &v
	}
	return &o, nil
}

func (r *OrderRepo) MarkOrderFailed(ctx context.Context, orderID string, userID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_orders SET status = 'failed' WHERE order_id = ? AND user_id = ? AND status = 'created'`,
		orderID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
