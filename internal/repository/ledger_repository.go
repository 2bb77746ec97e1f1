package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// LedgerRepo owns the seat_claims table.  A row exists per claimed or
// sold seat; the (showtime_id, seat_code) primary key guarantees one
// owner.  Expired HELD rows are left in place and treated as free; the
// next claimant deletes them inside its own transaction.  All expiry
// arithmetic uses the database clock.
type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

type seatOwner struct {
	claimID string
	status  model.ClaimStatus
	live    bool
}

// TryClaim inserts one HELD row per seat, all or nothing.
func (r *LedgerRepo) TryClaim(ctx context.Context, req model.ClaimRequest) (*model.Claim, error) {
	seats := model.NormalizeSeats(req.Seats)
	if len(seats) == 0 {
		return nil, model.ErrNoSeats
	}

	var claim *model.Claim
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockShowtimeShared(ctx, tx, req.ShowtimeID); err != nil {
			return err
		}

		args := append([]interface{}{req.ShowtimeID}, stringArgs(seats)...)
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM seat_claims
			  WHERE showtime_id = ? AND status = 'HELD' AND expires_at <= UTC_TIMESTAMP(6)
			    AND seat_code IN (`+placeholders(len(seats))+`)`,
			args...); err != nil {
			return fmt.Errorf("expire claims: %w", err)
		}

		var b strings.Builder
		b.WriteString(`INSERT IGNORE INTO seat_claims (showtime_id, seat_code, claim_id, status, expires_at) VALUES `)
		ins := make([]interface{}, 0, len(seats)*4)
		micros := req.TTL.Microseconds()
		for i, code := range seats {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(`(?, ?, ?, 'HELD', DATE_ADD(UTC_TIMESTAMP(6), INTERVAL ? MICROSECOND))`)
			ins = append(ins, req.ShowtimeID, code, req.ClaimID, micros)
		}
		res, err := tx.ExecContext(ctx, b.String(), ins...)
		if err != nil {
			return fmt.Errorf("insert claims: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if int(inserted) < len(seats) {
			owners, err := lockSeatRows(ctx, tx, req.ShowtimeID, seats)
			if err != nil {
				return err
			}
			var conflicts []string
			for _, code := range seats {
				o, ok := owners[code]
				if !ok || o.claimID != req.ClaimID || o.status != model.ClaimHeld {
					conflicts = append(conflicts, code)
				}
			}
			if len(conflicts) > 0 {
				return &model.SeatConflictError{Seats: conflicts}
			}
		}

		var expires sql.NullTime
		if err := tx.QueryRowContext(ctx,
			`SELECT MIN(expires_at) FROM seat_claims WHERE showtime_id = ? AND claim_id = ?`,
			req.ShowtimeID, req.ClaimID).Scan(&expires); err != nil {
			return err
		}
		claim = &model.Claim{
			ShowtimeID: req.ShowtimeID,
			ClaimID:    req.ClaimID,
			Seats:      seats,
			ExpiresAt:  expires.Time,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// Release removes a claim's HELD rows and returns how many were freed.
// Sold rows are never touched.
func (r *LedgerRepo) Release(ctx context.Context, showtimeID uint64, claimID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM seat_claims WHERE showtime_id = ? AND claim_id = ? AND status = 'HELD'`,
		showtimeID, claimID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// lockShowtimeShared fails with ErrShowtimeNotFound for unknown showtimes
// and blocks layout edits until the claim commits.
func lockShowtimeShared(ctx context.Context, tx *sql.Tx, showtimeID uint64) error {
	var id uint64
	err := tx.QueryRowContext(ctx, `SELECT id FROM showtimes WHERE id = ? FOR SHARE`, showtimeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrShowtimeNotFound
	}
	return err
}

// lockSeatRows reads and X-locks the ledger rows of seats.
func lockSeatRows(ctx context.Context, tx *sql.Tx, showtimeID uint64, seats []string) (map[string]seatOwner, error) {
	args := append([]interface{}{showtimeID}, stringArgs(seats)...)
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_code, claim_id, status, expires_at > UTC_TIMESTAMP(6)
		   FROM seat_claims
		  WHERE showtime_id = ? AND seat_code IN (`+placeholders(len(seats))+`)
		  FOR UPDATE`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owners := make(map[string]seatOwner, len(seats))
	for rows.Next() {
		var (
			code, claimID, status string
			live                  sql.NullBool
		)
		if err := rows.Scan(&code, &claimID, &status, &live); err != nil {
			return nil, err
		}
		owners[code] = seatOwner{claimID: claimID, status: model.ClaimStatus(status), live: live.Valid && live.Bool}
	}
	return owners, rows.Err()
}
