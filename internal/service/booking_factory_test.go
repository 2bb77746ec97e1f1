package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

func TestMaterializeCopiesSnapshot(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &BookingFactory{newID: func() string { return "bk-1" }, now: func() time.Time { return at }}
	order := &model.PaymentOrder{
		OrderID: "order_1", UserID: 7, ShowtimeID: 3,
		Seats: []string{"c2", "A1"}, Amount: 1450, Currency: "INR",
	}
	snap := model.ShowtimeSnapshot{ShowtimeID: 3, MovieTitle: "Oppenheimer", TheatreName: "INOX", Date: "2025-03-01", Time: "07:00 PM"}

	b := f.Materialize(order, snap, "pay_9")

	assert.Equal(t, "bk-1", b.ID)
	assert.Equal(t, []string{"A1", "C2"}, b.Seats)
	assert.Equal(t, int64(1450), b.Amount)
	assert.Equal(t, "Oppenheimer", b.MovieTitle)
	assert.Equal(t, "INOX", b.TheatreName)
	assert.Equal(t, "2025-03-01 • 07:00 PM", b.DateTime)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, model.ProviderRazorpay, b.PaymentProvider)
	assert.Equal(t, "pay_9", *b.PaymentID)
	assert.Equal(t, at, b.CreatedAt)

	snap.MovieTitle = "renamed"
	assert.Equal(t, "Oppenheimer", b.MovieTitle)
}

func TestMaterializeWithoutPaymentID(t *testing.T) {
	b := NewBookingFactory().Materialize(&model.PaymentOrder{Seats: []string{"A1"}}, model.ShowtimeSnapshot{}, "")
	assert.Nil(t, b.PaymentID)
	assert.NotEmpty(t, b.ID)
}
