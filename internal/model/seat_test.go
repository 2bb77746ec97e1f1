package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeatCode(t *testing.T) {
	cases := []struct {
		in  string
		row string
		col int
		ok  bool
	}{
		{"A1", "A", 1, true},
		{" j15 ", "J", 15, true},
		{"AA3", "AA", 3, true},
		{"A0", "", 0, false},
		{"12", "", 0, false},
		{"B", "", 0, false},
		{"B-1", "", 0, false},
		{"A01", "A", 1, true},
		{"A+1", "", 0, false},
		{"A 1", "", 0, false},
	}
	for _, tc := range cases {
		row, col, ok := ParseSeatCode(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.row, row, tc.in)
		assert.Equal(t, tc.col, col, tc.in)
	}
}

func TestNormalizeSeatsSortsNumerically(t *testing.T) {
	got := NormalizeSeats([]string{"a10", "A2", "B1", "a2", "", "AA1", "C3"})
	assert.Equal(t, []string{"A2", "A10", "B1", "C3", "AA1"}, got)
}

func TestNormalizeSeatsCanonicalizesSpelling(t *testing.T) {
	got := NormalizeSeats([]string{"A01", "a1", "A001", "b007", "A+1"})
	assert.Equal(t, []string{"A1", "B7", "A+1"}, got)
	assert.Equal(t, "C12", CanonicalSeat(" c012 "))
	assert.Equal(t, "Z-9", CanonicalSeat("z-9"))
}

func TestLayoutCloneIsDeep(t *testing.T) {
	l := DefaultLayout()
	c := l.Clone()
	c[0].Rows[0] = "Z"
	assert.Equal(t, "A", l[0].Rows[0])
	assert.Equal(t, 20+60+60, l.Capacity())
}

func TestSnapshotDateTime(t *testing.T) {
	st := &Showtime{ID: 4, MovieTitle: "Dune", TheatreName: "PVR", Date: "2025-01-02", Time: "10:30 AM"}
	snap := st.Snapshot()
	assert.Equal(t, uint64(4), snap.ShowtimeID)
	assert.Equal(t, "2025-01-02 • 10:30 AM", snap.DateTime())
}
