package model

import "time"

// Section is one priced band of rows inside a hall layout.  Every
// row listed in Rows holds SeatsPerRow seats numbered from 1.
//
// Fields:
//
//	Label       – display name (RECLINER, GOLD, ...).
//	Price       – price of one seat in major currency units.
//	Rows        – row labels belonging to the section, in display order.
//	SeatsPerRow – number of seats in each row of the section.
type Section struct {
	Label       string   `json:"label"`
	Price       int64    `json:"price"`
	Rows        []string `json:"rows"`
	SeatsPerRow int      `json:"seats_per_row"`
}

// Layout is the ordered list of sections making up a seating chart.
type Layout []Section

// Clone returns a deep copy so callers can hand the layout out
// without sharing the row slices.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	for i, s := range l {
		rows := make([]string, len(s.Rows))
		copy(rows, s.Rows)
		s.Rows = rows
		out[i] = s
	}
	return out
}

// Capacity is the total number of seats in the layout.
func (l Layout) Capacity() int {
	n := 0
	for _, s := range l {
		n += len(s.Rows) * s.SeatsPerRow
	}
	return n
}

// DefaultLayout returns the hall template used when a showtime is
// created without an explicit layout.
func DefaultLayout() Layout {
	return Layout{
		{Label: "RECLINER", Price: 1100, Rows: []string{"A", "B"}, SeatsPerRow: 10},
		{Label: "GOLD", Price: 350, Rows: []string{"C", "D", "E", "F"}, SeatsPerRow: 15},
		{Label: "CLASSIC", Price: 210, Rows: []string{"G", "H", "I", "J"}, SeatsPerRow: 15},
	}
}

// Showtime is a (movie, theatre, date, time) screening together with
// the seating chart snapshot it was created with.
//
// Fields:
//
//	ID          – primary key identifier.
//	MovieID     – movie being screened.
//	TheatreID   – theatre hosting the screening.
//	MovieTitle  – movie title, joined from movies.
//	TheatreName – theatre name, joined from theatres.
//	Date        – calendar date, YYYY-MM-DD.
//	Time        – display time such as "10:30 AM".
//	Layout      – seating chart; empty means the default template.
type Showtime struct {
	ID          uint64    // showtimes.id
	MovieID     uint64    // showtimes.movie_id
	TheatreID   uint64    // showtimes.theatre_id
	MovieTitle  string    // movies.title
	TheatreName string    // theatres.name
	Date        string    // showtimes.show_date
	Time        string    // showtimes.show_time
	Layout      Layout    // showtimes.layout (JSON)
	CreatedAt   time.Time // showtimes.created_at
	UpdatedAt   time.Time // showtimes.updated_at
}

// Snapshot copies the descriptive fields a booking keeps even if the
// catalog changes later.
func (s *Showtime) Snapshot() ShowtimeSnapshot {
	return ShowtimeSnapshot{
		ShowtimeID:  s.ID,
		MovieTitle:  s.MovieTitle,
		TheatreName: s.TheatreName,
		Date:        s.Date,
		Time:        s.Time,
	}
}

// ShowtimeSnapshot is the catalog view captured when seats are claimed.
type ShowtimeSnapshot struct {
	ShowtimeID  uint64 `json:"showtime_id"`
	MovieTitle  string `json:"movie_title"`
	TheatreName string `json:"theatre"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// DateTime renders the date and time the way tickets print them.
func (s ShowtimeSnapshot) DateTime() string {
	return s.Date + " • " + s.Time
}
