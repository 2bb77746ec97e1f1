package service

import (
	"fmt"
	"strings"

	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// ResolveLayout returns a copy of the showtime's seating chart, or the
// default template when the showtime was stored without one.
func ResolveLayout(st *model.Showtime) model.Layout {
	if st == nil || len(st.Layout) == 0 {
		return model.DefaultLayout()
	}
	return st.Layout.Clone()
}

// PriceOf prices one seat.  Unknown rows and out of range columns are
// reported as *model.UnknownSeatError.
func PriceOf(layout model.Layout, seat string) (int64, error) {
	row, col, ok := model.ParseSeatCode(seat)
	if !ok {
		return 0, &model.UnknownSeatError{Seat: seat}
	}
	for _, sec := range layout {
		for _, r := range sec.Rows {
			if r != row {
				continue
			}
			if col > sec.SeatsPerRow {
				return 0, &model.UnknownSeatError{Seat: seat}
			}
			return sec.Price, nil
		}
	}
	return 0, &model.UnknownSeatError{Seat: seat}
}

// QuoteSeats normalizes a seat selection and sums its price.
func QuoteSeats(layout model.Layout, seats []string) (int64, []string, error) {
	normalized := model.NormalizeSeats(seats)
	if len(normalized) == 0 {
		return 0, nil, model.ErrNoSeats
	}
	var total int64
	for _, s := range normalized {
		p, err := PriceOf(layout, s)
		if err != nil {
			return 0, nil, err
		}
		total += p
	}
	return total, normalized, nil
}

// ValidateLayout checks an admin supplied layout.
func ValidateLayout(layout model.Layout) error {
	if len(layout) == 0 {
		return fmt.Errorf("%w: no sections", model.ErrInvalidLayout)
	}
	seen := map[string]string{}
	for _, sec := range layout {
		if sec.Label == "" {
			return fmt.Errorf("%w: section without label", model.ErrInvalidLayout)
		}
		if sec.Price <= 0 || sec.SeatsPerRow <= 0 || len(sec.Rows) == 0 {
			return fmt.Errorf("%w: section %s needs rows, seats and a positive price", model.ErrInvalidLayout, sec.Label)
		}
		for _, r := range sec.Rows {
			if !isRowLabel(r) {
				return fmt.Errorf("%w: bad row label %q", model.ErrInvalidLayout, r)
			}
			key := strings.ToUpper(r)
			if other, dup := seen[key]; dup {
				return fmt.Errorf("%w: row %s in both %s and %s", model.ErrInvalidLayout, key, other, sec.Label)
			}
			seen[key] = sec.Label
		}
	}
	return nil
}

func isRowLabel(r string) bool {
	if r == "" || len(r) > 3 {
		return false
	}
	for _, c := range strings.ToUpper(r) {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// NormalizeLayout upper-cases row labels.
func NormalizeLayout(layout model.Layout) model.Layout {
	out := layout.Clone()
	for i := range out {
		for j, r := range out[i].Rows {
			out[i].Rows[j] = strings.ToUpper(strings.TrimSpace(r))
		}
	}
	return out
}
