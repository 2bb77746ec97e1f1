package service

import (
	"context"
	"strings"
	"time"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

const dateLayout = "2006-01-02"

// ScheduleInput describes a showtime an admin wants to add.  A nil
// Layout means the default template.
type ScheduleInput struct {
	MovieID   uint64
	TheatreID uint64
	Date      string
	Time      string
	Layout    model.Layout
}

// Schedule validates and applies admin changes to showtimes.
type Schedule struct {
	showtimes ShowtimeStore
}

func NewSchedule(showtimes ShowtimeStore) *Schedule {
	return &Schedule{showtimes: showtimes}
}

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD
// form.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func (s *Schedule) Create(ctx context.Context, in ScheduleInput) (*model.Showtime, error) {
	if !ValidDate(in.Date) {
		return nil, model.ErrInvalidDate
	}
	layout := model.DefaultLayout()
	if len(in.Layout) > 0 {
		if err := ValidateLayout(in.Layout); err != nil {
			return nil, err
		}
		layout = NormalizeLayout(in.Layout)
	}
	st := &model.Showtime{
		MovieID:   in.MovieID,
		TheatreID: in.TheatreID,
		Date:      in.Date,
		Time:      strings.TrimSpace(in.Time),
		Layout:    layout,
	}
	if err := s.showtimes.CreateShowtime(ctx, st); err != nil {
		return nil, err
	}
	return s.showtimes.GetShowtime(ctx, st.ID)
}

func (s *Schedule) ReplaceLayout(ctx context.Context, id uint64, layout model.Layout) (*model.Showtime, error) {
	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}
	if err := s.showtimes.UpdateLayout(ctx, id, NormalizeLayout(layout)); err != nil {
		return nil, err
	}
	return s.showtimes.GetShowtime(ctx, id)
}

// List returns showtimes for a movie on a date, creating them lazily.
func (s *Schedule) List(ctx context.Context, movieID uint64, date string) ([]model.Showtime, error) {
	if !ValidDate(date) {
		return nil, model.ErrInvalidDate
	}
	return s.showtimes.ListShowtimes(ctx, movieID, date)
}

func (s *Schedule) Get(ctx context.Context, id uint64) (*model.Showtime, error) {
	return s.showtimes.GetShowtime(ctx, id)
}
