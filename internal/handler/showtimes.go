package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
	"github.com/vivekyarra/moviesbyvivek/internal/service"
)

// ShowtimeHandler serves the public, unauthenticated showtime reads.
type ShowtimeHandler struct {
	Schedule  *service.Schedule
	Occupancy *service.OccupancyView
	Log       *logger.Logger
}

// PublicShowtime is the showtime shape returned to clients.
type PublicShowtime struct {
	ID        uint64    `json:"id"`
	MovieID   uint64    `json:"movie_id"`
	TheatreID uint64    `json:"theatre_id"`
	Movie     string    `json:"movie_title"`
	Theatre   string    `json:"theatre"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	DateTime  string    `json:"datetime"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

func toPublicShowtime(st *model.Showtime) PublicShowtime {
	return PublicShowtime{
		ID:        st.ID,
		MovieID:   st.MovieID,
		TheatreID: st.TheatreID,
		Movie:     st.MovieTitle,
		Theatre:   st.TheatreName,
		Date:      st.Date,
		Time:      st.Time,
		DateTime:  st.Snapshot().DateTime(),
		Capacity:  service.ResolveLayout(st).Capacity(),
		CreatedAt: st.CreatedAt,
	}
}

// List handles GET /v1/showtimes?movie_id=&date=.  Showtimes for a
// (movie, date) pair are created from the theatres' show times on the
// first request.
func (h *ShowtimeHandler) List(c echo.Context) error {
	movieID, err := strconv.ParseUint(c.QueryParam("movie_id"), 10, 64)
	if err != nil || movieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
	}
	date := c.QueryParam("date")
	if !service.ValidDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	list, err := h.Schedule.List(c.Request().Context(), movieID, date)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	out := make([]PublicShowtime, 0, len(list))
	for i := range list {
		out = append(out, toPublicShowtime(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *ShowtimeHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	st, err := h.Schedule.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toPublicShowtime(st))
}

// Layout handles GET /v1/showtimes/:id/layout.
func (h *ShowtimeHandler) Layout(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	st, err := h.Schedule.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id": st.ID,
		"sections":    service.ResolveLayout(st),
	})
}

// Occupied handles GET /v1/showtimes/:id/occupied.  Sold seats only,
// unless include_held=true.
func (h *ShowtimeHandler) Occupied(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	includeHeld, _ := strconv.ParseBool(c.QueryParam("include_held"))
	seats, err := h.Occupancy.OccupiedSeats(c.Request().Context(), id, includeHeld)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"showtime_id": id, "seats": seats})
}
