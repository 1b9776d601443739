package repository

import (
	"testing"
	"time"
)

func TestSessionOverlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 5, 1, h, m, 0, 0, time.UTC) }
	a := Session{ID: "a", StartTime: at(10, 0), EndTime: at(11, 0)}

	cases := []struct {
		name  string
		other Session
		want  bool
	}{
		{name: "partial overlap", other: Session{StartTime: at(10, 30), EndTime: at(11, 30)}, want: true},
		{name: "contained", other: Session{StartTime: at(10, 15), EndTime: at(10, 45)}, want: true},
		{name: "touching end", other: Session{StartTime: at(11, 0), EndTime: at(12, 0)}, want: true},
		{name: "disjoint", other: Session{StartTime: at(12, 0), EndTime: at(13, 0)}, want: false},
		{name: "before", other: Session{StartTime: at(8, 0), EndTime: at(9, 59)}, want: false},
	}
	for _, tc := range cases {
		if got := a.Overlaps(tc.other); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
		if got := tc.other.Overlaps(a); got != tc.want {
			t.Fatalf("%s (reversed): expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
