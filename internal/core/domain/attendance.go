package domain

import (
	"sort"
	"time"
)

// AttendanceType distinguishes check-in from check-out records.
type AttendanceType string

const (
	CheckIn  AttendanceType = "check-in"
	CheckOut AttendanceType = "check-out"
)

// Attendance is a single check-in or check-out event.
type Attendance struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      AttendanceType `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
}

// Session is a reconstructed check-in/check-out pair. Out is nil while the
// session is still open.
type Session struct {
	In  time.Time
	Out *time.Time
}

// Worked returns the session length, zero for an open session.
func (s Session) Worked() time.Duration {
	if s.Out == nil {
		return 0
	}
	return s.Out.Sub(s.In)
}

// PairSessions orders a single user's records by timestamp and pairs each
// check-in with the next check-out. A check-out with no preceding open
// check-in is ignored; a second check-in closes nothing and starts a new
// session.
func PairSessions(records []*Attendance) []Session {
	sorted := make([]*Attendance, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var sessions []Session
	open := -1
	for _, r := range sorted {
		switch r.Type {
		case CheckIn:
			sessions = append(sessions, Session{In: r.Timestamp})
			open = len(sessions) - 1
		case CheckOut:
			if open < 0 {
				continue
			}
			out := r.Timestamp
			sessions[open].Out = &out
			open = -1
		}
	}
	return sessions
}
