package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

func mapped(err error, confirm bool) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	if confirm {
		_ = respondConfirmError(c, logger.Discard(), err)
	} else {
		_ = respondError(c, logger.Discard(), err)
	}
	return rec
}

func TestRespondErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&model.SeatConflictError{Seats: []string{"A1"}}, http.StatusConflict},
		{&model.PricingMismatchError{Expected: 10, Submitted: 5}, http.StatusBadRequest},
		{&model.UnknownSeatError{Seat: "Z9"}, http.StatusBadRequest},
		{model.ErrNoSeats, http.StatusBadRequest},
		{fmt.Errorf("%w: no sections", model.ErrInvalidLayout), http.StatusBadRequest},
		{model.ErrInvalidSignature, http.StatusBadRequest},
		{model.ErrShowtimeNotFound, http.StatusNotFound},
		{model.ErrOrderNotFound, http.StatusNotFound},
		{model.ErrBookingNotFound, http.StatusNotFound},
		{model.ErrShowtimeExists, http.StatusConflict},
		{model.ErrLayoutLocked, http.StatusConflict},
		{model.ErrOrderNotOpen, http.StatusConflict},
		{fmt.Errorf("%w: timeout", model.ErrGatewayUnavailable), http.StatusBadGateway},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapped(tc.err, false).Code, tc.err.Error())
	}
}

func TestConflictBodyNamesSeats(t *testing.T) {
	rec := mapped(&model.SeatConflictError{Seats: []string{"A2", "A3"}}, false)
	assert.JSONEq(t, `{"error":"some seats are no longer available","conflict_seats":["A2","A3"]}`, rec.Body.String())

	rec = mapped(&model.PricingMismatchError{Expected: 2200, Submitted: 2000}, false)
	assert.Contains(t, rec.Body.String(), `"expected_amount":2200`)
}

func TestConfirmErrorsAreGeneric(t *testing.T) {
	for _, err := range []error{model.ErrOrderNotFound, model.ErrInvalidSignature, model.ErrVerificationFailed} {
		rec := mapped(err, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"payment could not be verified"}`, rec.Body.String())
	}
	assert.Equal(t, http.StatusConflict, mapped(&model.SeatConflictError{Seats: []string{"C5"}}, true).Code)
}

func TestValidationMessage(t *testing.T) {
	v := NewRequestValidator()
	err := v.Validate(&createOrderRequest{Seats: []string{}})
	assert.Equal(t, "showtime_id is required; seats must be at least 1; amount must be at least 1", validationMessage(err))
	assert.Equal(t, "invalid request body", validationMessage(errors.New("x")))
}
