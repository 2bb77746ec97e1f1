package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
	"github.com/vivekyarra/moviesbyvivek/internal/service"
)

// AdminHandler schedules showtimes and edits their layouts.  Routes are
// guarded by the ADMIN role.
type AdminHandler struct {
	Schedule *service.Schedule
	Log      *logger.Logger
}

type createShowtimeRequest struct {
	MovieID   uint64       `json:"movie_id" validate:"required"`
	TheatreID uint64       `json:"theatre_id" validate:"required"`
	Date      string       `json:"date" validate:"required"`
	Time      string       `json:"time" validate:"required"`
	Layout    model.Layout `json:"layout"`
}

type layoutRequest struct {
	Sections model.Layout `json:"sections" validate:"required,min=1"`
}

// CreateShowtime handles POST /v1/admin/showtimes.  Without a layout the
// default hall template is used.
func (h *AdminHandler) CreateShowtime(c echo.Context) error {
	var body createShowtimeRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	st, err := h.Schedule.Create(c.Request().Context(), service.ScheduleInput{
		MovieID:   body.MovieID,
		TheatreID: body.TheatreID,
		Date:      body.Date,
		Time:      body.Time,
		Layout:    body.Layout,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toPublicShowtime(st))
}

// ReplaceLayout handles PUT /v1/admin/showtimes/:id/layout.  Refused
// with 409 once any seat is held or sold.
func (h *AdminHandler) ReplaceLayout(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body layoutRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	st, err := h.Schedule.ReplaceLayout(c.Request().Context(), id, body.Sections)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id": st.ID,
		"sections":    st.Layout,
	})
}
