package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/service"
)

// BookingHandler lists the caller's confirmed bookings.
type BookingHandler struct {
	Bookings service.BookingStore
	Log      *logger.Logger
}

// List handles GET /v1/bookings, newest first.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	list, err := h.Bookings.ListBookingsByUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	b, err := h.Bookings.GetBookingForUser(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}
