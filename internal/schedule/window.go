// Package schedule decides which session is operationally relevant at a
// given instant.
package schedule

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/foxseedlab/boothscan/internal/repository"
)

type WindowStatus string

const (
	WindowActive       WindowStatus = "active"
	WindowStartingSoon WindowStatus = "starting_soon"
	WindowEndingSoon   WindowStatus = "ending_soon"
	WindowNone         WindowStatus = "none"
)

type Window struct {
	Session *repository.Session
	Status  WindowStatus
	Message string
}

// Resolve is pure: the same sessions, instant and grace always give the same
// window. Replayed scans must pass their own capture time as now.
//
// A session containing now (bounds inclusive) wins immediately, earliest start
// first. Otherwise the earliest session starting within the grace period is
// preferred over the latest session that ended within it.
func Resolve(sessions []repository.Session, now time.Time, graceMinutes int) Window {
	if graceMinutes < 0 {
		graceMinutes = 0
	}
	grace := time.Duration(graceMinutes) * time.Minute

	sorted := make([]repository.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	var startingSoon, endingSoon *repository.Session
	for i := range sorted {
		s := &sorted[i]
		switch {
		case !now.Before(s.StartTime) && !now.After(s.EndTime):
			return Window{Session: s, Status: WindowActive, Message: fmt.Sprintf("%s is in progress", s.Name)}
		case !now.Before(s.StartTime.Add(-grace)) && now.Before(s.StartTime):
			if startingSoon == nil || s.StartTime.Before(startingSoon.StartTime) {
				startingSoon = s
			}
		case now.After(s.EndTime) && !now.After(s.EndTime.Add(grace)):
			if endingSoon == nil || s.EndTime.After(endingSoon.EndTime) {
				endingSoon = s
			}
		}
	}

	if startingSoon != nil {
		return Window{
			Session: startingSoon,
			Status:  WindowStartingSoon,
			Message: fmt.Sprintf("%s starts in %d min", startingSoon.Name, ceilMinutes(startingSoon.StartTime.Sub(now))),
		}
	}
	if endingSoon != nil {
		return Window{
			Session: endingSoon,
			Status:  WindowEndingSoon,
			Message: fmt.Sprintf("%s ended %d min ago", endingSoon.Name, ceilMinutes(now.Sub(endingSoon.EndTime))),
		}
	}
	return Window{Status: WindowNone, Message: "No session is active"}
}

// Operative reports whether the window points at a session a scan can be
// attributed to. The grace period keeps a session relevant on both sides.
func (w Window) Operative() bool {
	return w.Session != nil && w.Status != WindowNone
}

func ceilMinutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}
