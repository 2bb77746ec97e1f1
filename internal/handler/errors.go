package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

const msgNotVerified = "payment could not be verified"

// respondError maps booking errors onto HTTP responses.  Anything it
// does not recognise is logged and answered with 500.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	var (
		conflict *model.SeatConflictError
		mismatch *model.PricingMismatchError
		unknown  *model.UnknownSeatError
	)
	switch {
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          "some seats are no longer available",
			"conflict_seats": conflict.Seats,
		})
	case errors.As(err, &mismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":           "amount does not match seat prices",
			"expected_amount": mismatch.Expected,
		})
	case errors.As(err, &unknown):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrNoSeats),
		errors.Is(err, model.ErrInvalidLayout),
		errors.Is(err, model.ErrInvalidDate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidSignature),
		errors.Is(err, model.ErrVerificationFailed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgNotVerified})
	case errors.Is(err, model.ErrShowtimeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	case errors.Is(err, model.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, model.ErrTheatreNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "theatre not found"})
	case errors.Is(err, model.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, model.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, model.ErrShowtimeExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "showtime already exists"})
	case errors.Is(err, model.ErrLayoutLocked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "layout is locked once seats are held or sold"})
	case errors.Is(err, model.ErrOrderNotOpen):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order is no longer open"})
	case errors.Is(err, model.ErrGatewayUnavailable):
		log.LogHTTPError(c, err, http.StatusBadGateway)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
	}
	log.LogHTTPError(c, err, http.StatusInternalServerError)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// respondConfirmError hides whether a confirmation failed on the order
// lookup or the signature; conflicts still name the lost seats.
func respondConfirmError(c echo.Context, log *logger.Logger, err error) error {
	if errors.Is(err, model.ErrOrderNotFound) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgNotVerified})
	}
	return respondError(c, log, err)
}
