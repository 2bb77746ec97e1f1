package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

func TestOrderRepoCreateAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepo(db)
	expires := time.Date(2025, 1, 1, 10, 12, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO payment_orders").
		WithArgs("order_1", "claim-1", 42, 7, `["A1"]`, 1100, "INR", "created",
			"Dune", "PVR", "2025-01-02", "10:30 AM", expires).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateOrder(context.Background(), &model.PaymentOrder{
		OrderID: "order_1", ClaimID: "claim-1", UserID: 42, ShowtimeID: 7, Seats: []string{"A1"},
		Amount: 1100, Currency: "INR", Status: model.OrderCreated,
		Snapshot:       model.ShowtimeSnapshot{ShowtimeID: 7, MovieTitle: "Dune", TheatreName: "PVR", Date: "2025-01-02", Time: "10:30 AM"},
		ClaimExpiresAt: expires,
	}))

	cols := []string{"order_id", "claim_id", "user_id", "showtime_id", "seats", "amount", "currency", "status",
		"provider_payment_id", "booking_id", "movie_title", "theatre_name", "show_date", "show_time",
		"claim_expires_at", "created_at", "updated_at"}
	mock.ExpectQuery("FROM payment_orders WHERE order_id = \\? AND user_id = \\?").
		WithArgs("order_1", 42).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("order_1", "claim-1", 42, 7, []byte(`["A1"]`), 1100, "INR", "paid",
			"pay_1", "b-1", "Dune", "PVR", "2025-01-02", "10:30 AM", expires, expires, expires))

	o, err := repo.GetOrderForUser(context.Background(), "order_1", 42)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaid, o.Status)
	assert.Equal(t, "b-1", *o.BookingID)
	assert.Equal(t, uint64(7), o.Snapshot.ShowtimeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepoGetOtherUsersOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM payment_orders").WillReturnRows(sqlmock.NewRows([]string{"order_id"}))
	_, err = NewOrderRepo(db).GetOrderForUser(context.Background(), "order_1", 1)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderRepoMarkFailedIsConditional(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepo(db)

	q := regexp.QuoteMeta("UPDATE payment_orders SET status = 'failed' WHERE order_id = ? AND user_id = ? AND status = 'created'")
	mock.ExpectExec(q).WithArgs("order_1", 42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("order_1", 42).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkOrderFailed(context.Background(), "order_1", 42)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkOrderFailed(context.Background(), "order_1", 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
