package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// Settle confirms an order in one transaction.  Lock order is the
// payment order row, then its seat rows, so two confirms for one order
// serialize on the first lock.  A concurrent cancel flips the status
// with a conditional UPDATE outside this transaction; whichever commits
// first wins and the other sees a non-CREATED order.
//
// When the claim lost any seat the order is failed and its leftover
// holds freed; that state is committed before the conflict is returned.
func (r *LedgerRepo) Settle(ctx context.Context, s model.Settlement) (*model.Booking, error) {
	o := s.Order
	var (
		out      *model.Booking
		conflict *model.SeatConflictError
	)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		out, conflict = nil, nil

		var (
			status    string
			bookingID sql.NullString
			claimID   string
			seatsRaw  []byte
		)
		err := tx.QueryRowContext(ctx,
			`SELECT status, booking_id, claim_id, seats FROM payment_orders
			  WHERE order_id = ? AND user_id = ? FOR UPDATE`,
			o.OrderID, o.UserID).Scan(&status, &bookingID, &claimID, &seatsRaw)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		switch model.OrderStatus(status) {
		case model.OrderPaid:
			if !bookingID.Valid {
				return model.ErrVerificationFailed
			}
			b, err := getBooking(ctx, tx, `WHERE id = ?`, bookingID.String)
			if err != nil {
				return err
			}
			out = b
			return nil
		case model.OrderFailed:
			return model.ErrVerificationFailed
		}

		var seats []string
		if err := json.Unmarshal(seatsRaw, &seats); err != nil {
			return fmt.Errorf("decode order seats: %w", err)
		}
		owners, err := lockSeatRows(ctx, tx, o.ShowtimeID, seats)
		if err != nil {
			return err
		}
		var lost []string
		for _, code := range seats {
			ow, ok := owners[code]
			if !ok || ow.claimID != claimID || ow.status != model.ClaimHeld || !ow.live {
				lost = append(lost, code)
			}
		}

		if len(lost) > 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE payment_orders SET status = 'failed', provider_payment_id = ?
				  WHERE order_id = ? AND status = 'created'`,
				s.PaymentID, o.OrderID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM seat_claims WHERE showtime_id = ? AND claim_id = ? AND status = 'HELD'`,
				o.ShowtimeID, claimID); err != nil {
				return err
			}
			conflict = &model.SeatConflictError{Seats: lost}
			return nil
		}

		b := s.Booking
		if err := insertBooking(ctx, tx, b); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE seat_claims SET status = 'SOLD', expires_at = NULL, booking_id = ?
			  WHERE showtime_id = ? AND claim_id = ? AND status = 'HELD'`,
			b.ID, o.ShowtimeID, claimID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil || int(n) != len(seats) {
			return fmt.Errorf("promote claim %s: %d of %d rows (%v)", claimID, n, len(seats), err)
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE payment_orders SET status = 'paid', booking_id = ?, provider_payment_id = ?
			  WHERE order_id = ? AND status = 'created'`,
			b.ID, s.PaymentID, o.OrderID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil || n != 1 {
			return fmt.Errorf("mark order %s paid: %d rows (%v)", o.OrderID, n, err)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, conflict
	}
	return out, nil
}

func insertBooking(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	seats, err := json.Marshal(b.Seats)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (id, user_id, showtime_id, order_id, movie_title, theatre_name,
		   show_date, show_time, seats, amount, currency, status, payment_id, payment_provider, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.ShowtimeID, b.OrderID, b.MovieTitle, b.TheatreName,
		b.Date, b.Time, string(seats), b.Amount, b.Currency, b.Status, b.PaymentID, b.PaymentProvider, b.CreatedAt); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	var q strings.Builder
	q.WriteString(`INSERT INTO booking_seats (showtime_id, seat_code, booking_id) VALUES `)
	args := make([]interface{}, 0, len(b.Seats)*3)
	for i, code := range b.Seats {
		if i > 0 {
			q.WriteString(", ")
		}
		q.WriteString("(?, ?, ?)")
		args = append(args, b.ShowtimeID, code, b.ID)
	}
	if _, err := tx.ExecContext(ctx, q.String(), args...); err != nil {
		return fmt.Errorf("insert booking seats: %w", err)
	}
	return nil
}
