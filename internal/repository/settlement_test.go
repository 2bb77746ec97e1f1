package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

func settlementFixture() model.Settlement {
	pid := "pay_1"
	order := &model.PaymentOrder{
		OrderID: "order_1", ClaimID: "claim-1", UserID: 42, ShowtimeID: 7,
		Seats: []string{"A1", "A2"}, Amount: 2200, Currency: "INR", Status: model.OrderCreated,
	}
	booking := &model.Booking{
		ID: "b-1", UserID: 42, ShowtimeID: 7, OrderID: "order_1",
		MovieTitle: "Dune", TheatreName: "PVR", Date: "2025-01-02", Time: "10:30 AM",
		Seats: []string{"A1", "A2"}, Amount: 2200, Currency: "INR",
		Status: model.BookingConfirmed, PaymentID: &pid, PaymentProvider: model.ProviderRazorpay,
		CreatedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	return model.Settlement{Order: order, PaymentID: pid, Booking: booking}
}

var orderLockCols = []string{"status", "booking_id", "claim_id", "seats"}
var seatLockCols = []string{"seat_code", "claim_id", "status", "live"}

func TestSettleWritesBookingAndPromotesClaim(t *testing.T) {
	repo, mock := newMock(t)
	s := settlementFixture()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, booking_id, claim_id, seats FROM payment_orders").
		WithArgs("order_1", 42).
		WillReturnRows(sqlmock.NewRows(orderLockCols).AddRow("created", nil, "claim-1", []byte(`["A1","A2"]`)))
	mock.ExpectQuery("SELECT seat_code, claim_id, status").
		WithArgs(7, "A1", "A2").
		WillReturnRows(sqlmock.NewRows(seatLockCols).
			AddRow("A1", "claim-1", "HELD", true).
			AddRow("A2", "claim-1", "HELD", true))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO booking_seats").
		WithArgs(7, "A1", "b-1", 7, "A2", "b-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE seat_claims SET status = 'SOLD'").
		WithArgs("b-1", 7, "claim-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE payment_orders SET status = 'paid'").
		WithArgs("b-1", "pay_1", "order_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := repo.Settle(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "b-1", b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleExpiredClaimFailsOrder(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, booking_id, claim_id, seats FROM payment_orders").
		WillReturnRows(sqlmock.NewRows(orderLockCols).AddRow("created", nil, "claim-1", []byte(`["A1","A2"]`)))
	mock.ExpectQuery("SELECT seat_code, claim_id, status").
		WillReturnRows(sqlmock.NewRows(seatLockCols).
			AddRow("A1", "claim-1", "HELD", false).
			AddRow("A2", "claim-2", "HELD", true))
	mock.ExpectExec("UPDATE payment_orders SET status = 'failed'").
		WithArgs("pay_1", "order_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM seat_claims").
		WithArgs(7, "claim-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.Settle(context.Background(), settlementFixture())
	var conflict *model.SeatConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{"A1", "A2"}, conflict.Seats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleAlreadyPaidReturnsStoredBooking(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, booking_id, claim_id, seats FROM payment_orders").
		WillReturnRows(sqlmock.NewRows(orderLockCols).AddRow("paid", "b-0", "claim-1", []byte(`["A1","A2"]`)))
	mock.ExpectQuery("SELECT id, user_id, showtime_id").
		WithArgs("b-0").
		WillReturnRows(bookingRows().AddRow(bookingRow("b-0")...))
	mock.ExpectCommit()

	b, err := repo.Settle(context.Background(), settlementFixture())
	require.NoError(t, err)
	assert.Equal(t, "b-0", b.ID)
	assert.Equal(t, "2025-01-02 • 10:30 AM", b.DateTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleFailedOrderStaysFailed(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, booking_id, claim_id, seats FROM payment_orders").
		WillReturnRows(sqlmock.NewRows(orderLockCols).AddRow("failed", nil, "claim-1", []byte(`["A1"]`)))
	mock.ExpectRollback()

	_, err := repo.Settle(context.Background(), settlementFixture())
	assert.ErrorIs(t, err, model.ErrVerificationFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "showtime_id", "order_id", "movie_title", "theatre_name",
		"show_date", "show_time", "seats", "amount", "currency", "status", "payment_id", "payment_provider", "created_at"})
}

func bookingRow(id string) []driver.Value {
	return []driver.Value{id, 42, 7, "order_1", "Dune", "PVR", "2025-01-02", "10:30 AM",
		[]byte(`["A1","A2"]`), 2200, "INR", "confirmed", "pay_1", "razorpay",
		time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}
