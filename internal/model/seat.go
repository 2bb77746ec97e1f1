package model

import (
	"sort"
	"strconv"
	"strings"
)

// ParseSeatCode splits a seat code such as "B12" into its row label
// and 1-based column.  The code must be one or more letters followed
// by a positive decimal number.  Leading zeros are accepted, so "A01"
// and "A1" name the same seat.
func ParseSeatCode(code string) (row string, col int, ok bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	i := 0
	for i < len(code) && code[i] >= 'A' && code[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(code) {
		return "", 0, false
	}
	for j := i; j < len(code); j++ {
		if code[j] < '0' || code[j] > '9' {
			return "", 0, false
		}
	}
	n, err := strconv.Atoi(code[i:])
	if err != nil || n <= 0 {
		return "", 0, false
	}
	return code[:i], n, true
}

// SeatCode joins a row label and column into the canonical code.
func SeatCode(row string, col int) string {
	return strings.ToUpper(row) + strconv.Itoa(col)
}

// CanonicalSeat rewrites a parseable code into its canonical spelling
// ("a01" becomes "A1").  Anything else is only trimmed and upper-cased.
func CanonicalSeat(code string) string {
	if row, col, ok := ParseSeatCode(code); ok {
		return SeatCode(row, col)
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeSeats canonicalizes, de-duplicates and sorts seat codes.
// Blank entries are dropped.
func NormalizeSeats(seats []string) []string {
	seen := make(map[string]struct{}, len(seats))
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		s = CanonicalSeat(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	SortSeats(out)
	return out
}

// SortSeats orders codes by row (A..Z, then AA..) and then numerically
// by column, so A2 sorts before A10.  Codes that do not parse sort
// after valid ones, lexically.
func SortSeats(seats []string) {
	sort.SliceStable(seats, func(i, j int) bool {
		return seatLess(seats[i], seats[j])
	})
}

func seatLess(a, b string) bool {
	ra, ca, okA := ParseSeatCode(a)
	rb, cb, okB := ParseSeatCode(b)
	switch {
	case okA && !okB:
		return true
	case !okA && okB:
		return false
	case !okA && !okB:
		return a < b
	}
	if len(ra) != len(rb) {
		return len(ra) < len(rb)
	}
	if ra != rb {
		return ra < rb
	}
	return ca < cb
}
