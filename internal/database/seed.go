package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// DemoMovies and DemoTheatres populate an empty catalog for local runs.
var (
	DemoMovies = []model.Movie{
		{Title: "Interstellar"},
		{Title: "Dune: Part Two"},
		{Title: "Oppenheimer"},
	}
	DemoTheatres = []model.Theatre{
		{Name: "PVR Phoenix", City: "Bengaluru", ShowTimes: []string{"10:30 AM", "2:00 PM", "6:45 PM", "10:00 PM"}},
		{Name: "INOX Garuda", City: "Bengaluru", ShowTimes: []string{"11:15 AM", "3:30 PM", "8:00 PM"}},
	}
)

// Seed inserts the demo catalog when the movies table is empty.
func Seed(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range DemoMovies {
		if _, err := tx.ExecContext(ctx, `INSERT INTO movies (title) VALUES (?)`, m.Title); err != nil {
			return fmt.Errorf("seed movie %q: %w", m.Title, err)
		}
	}
	for _, th := range DemoTheatres {
		times, err := json.Marshal(th.ShowTimes)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO theatres (name, city, show_times) VALUES (?, ?, ?)`,
			th.Name, th.City, times); err != nil {
			return fmt.Errorf("seed theatre %q: %w", th.Name, err)
		}
	}
	return tx.Commit()
}
