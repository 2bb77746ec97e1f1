package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// ShowtimeRepo reads showtimes joined with their movie and theatre, and
// applies the admin writes the booking core allows.
type ShowtimeRepo struct {
	db *sql.DB
}

func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

const showtimeSelect = `SELECT s.id, s.movie_id, s.theatre_id, m.title, t.name, s.show_date, s.show_time,
	s.layout, s.created_at, s.updated_at
	FROM showtimes s
	JOIN movies m ON m.id = s.movie_id
	JOIN theatres t ON t.id = s.theatre_id `

func scanShowtime(s rowScanner) (*model.Showtime, error) {
	var (
		st     model.Showtime
		layout []byte
	)
	if err := s.Scan(&st.ID, &st.MovieID, &st.TheatreID, &st.MovieTitle, &st.TheatreName,
		&st.Date, &st.Time, &layout, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	if len(layout) > 0 && string(layout) != "null" {
		if err := json.Unmarshal(layout, &st.Layout); err != nil {
			return nil, fmt.Errorf("decode layout of showtime %d: %w", st.ID, err)
		}
	}
	return &st, nil
}

func (r *ShowtimeRepo) GetShowtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	st, err := scanShowtime(r.db.QueryRowContext(ctx, showtimeSelect+`WHERE s.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrShowtimeNotFound
	}
	return st, err
}

// ListShowtimes lazily materializes a (movie, date) schedule from each
// theatre's show_times.  INSERT IGNORE on the slot key makes concurrent
// first requests harmless.
func (r *ShowtimeRepo) ListShowtimes(ctx context.Context, movieID uint64, date string) ([]model.Showtime, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM showtimes WHERE movie_id = ? AND show_date = ?`, movieID, date).Scan(&n); err != nil {
		return nil, err
	}
	if n == 0 {
		if err := r.ensureShowtimes(ctx, movieID, date); err != nil {
			return nil, err
		}
	}

	rows, err := r.db.QueryContext(ctx,
		showtimeSelect+`WHERE s.movie_id = ? AND s.show_date = ? ORDER BY t.name, s.id`, movieID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Showtime{}
	for rows.Next() {
		st, err := scanShowtime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func (r *ShowtimeRepo) ensureShowtimes(ctx context.Context, movieID uint64, date string) error {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM movies WHERE id = ?`, movieID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrMovieNotFound
	}
	if err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, show_times FROM theatres ORDER BY id`)
	if err != nil {
		return err
	}
	type slot struct {
		theatreID uint64
		time      string
	}
	var slots []slot
	for rows.Next() {
		var (
			tid   uint64
			times []byte
		)
		if err := rows.Scan(&tid, &times); err != nil {
			rows.Close()
			return err
		}
		var list []string
		if err := json.Unmarshal(times, &list); err != nil {
			rows.Close()
			return fmt.Errorf("decode show_times of theatre %d: %w", tid, err)
		}
		for _, t := range list {
			slots = append(slots, slot{theatreID: tid, time: t})
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}

	layout, err := json.Marshal(model.DefaultLayout())
	if err != nil {
		return err
	}
	var q strings.Builder
	q.WriteString(`INSERT IGNORE INTO showtimes (movie_id, theatre_id, show_date, show_time, layout) VALUES `)
	args := make([]interface{}, 0, len(slots)*5)
	for i, s := range slots {
		if i > 0 {
			q.WriteString(", ")
		}
		q.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, movieID, s.theatreID, date, s.time, string(layout))
	}
	_, err = r.db.ExecContext(ctx, q.String(), args...)
	return err
}

// CreateShowtime sets st.ID.  A taken (movie, theatre, date, time) slot
// yields model.ErrShowtimeExists.
func (r *ShowtimeRepo) CreateShowtime(ctx context.Context, st *model.Showtime) error {
	layout, err := json.Marshal(st.Layout)
	if err != nil {
		return err
	}
	var ids struct{ movie, theatre sql.NullInt64 }
	if err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT id FROM movies WHERE id = ?), (SELECT id FROM theatres WHERE id = ?)`,
		st.MovieID, st.TheatreID).Scan(&ids.movie, &ids.theatre); err != nil {
		return err
	}
	if !ids.movie.Valid {
		return model.ErrMovieNotFound
	}
	if !ids.theatre.Valid {
		return model.ErrTheatreNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO showtimes (movie_id, theatre_id, show_date, show_time, layout) VALUES (?, ?, ?, ?, ?)`,
		st.MovieID, st.TheatreID, st.Date, st.Time, string(layout))
	if IsDuplicate(err) {
		return model.ErrShowtimeExists
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.ID = uint64(id)
	return nil
}

// UpdateLayout X-locks the showtime row, which waits out in-flight
// claims holding it in share mode, then refuses if any seat is sold or
// held by a live claim.
func (r *ShowtimeRepo) UpdateLayout(ctx context.Context, id uint64, layout model.Layout) error {
	raw, err := json.Marshal(layout)
	if err != nil {
		return err
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var got uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM showtimes WHERE id = ? FOR UPDATE`, id).Scan(&got)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrShowtimeNotFound
		}
		if err != nil {
			return err
		}
		var taken int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM seat_claims
			  WHERE showtime_id = ? AND (status = 'SOLD' OR expires_at > UTC_TIMESTAMP(6))`,
			id).Scan(&taken); err != nil {
			return err
		}
		if taken > 0 {
			return model.ErrLayoutLocked
		}
		_, err = tx.ExecContext(ctx, `UPDATE showtimes SET layout = ? WHERE id = ?`, string(raw), id)
		return err
	})
}
