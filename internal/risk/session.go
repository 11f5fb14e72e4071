package risk

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Session describes the intraday window in which entries are allowed.
// Times are minutes after midnight in Location.
type Session struct {
	EntryNotBefore int
	SquareOff      int
	Location       *time.Location
}

// ParseClock turns "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NewSession builds a session from "HH:MM" strings. An empty zone means UTC.
func NewSession(entryNotBefore, squareOff, zone string) (Session, error) {
	start, err := ParseClock(entryNotBefore)
	if err != nil {
		return Session{}, err
	}
	end, err := ParseClock(squareOff)
	if err != nil {
		return Session{}, err
	}
	if end <= start {
		return Session{}, fmt.Errorf("square off %s must be after entry %s", squareOff, entryNotBefore)
	}
	loc := time.UTC
	if zone != "" {
		if loc, err = time.LoadLocation(zone); err != nil {
			return Session{}, fmt.Errorf("load location %q: %w", zone, err)
		}
	}
	return Session{EntryNotBefore: start, SquareOff: end, Location: loc}, nil
}

func (s Session) minuteOfDay(now time.Time) int {
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return now.Hour()*60 + now.Minute()
}

// CanEnter reports whether now falls in [EntryNotBefore, SquareOff).
// A zero session is always open.
func (s Session) CanEnter(now time.Time) bool {
	if s.EntryNotBefore == 0 && s.SquareOff == 0 {
		return true
	}
	m := s.minuteOfDay(now)
	return m >= s.EntryNotBefore && m < s.SquareOff
}

// Window formats the session bounds as "HH:MM" strings.
func (s Session) Window() (entryNotBefore, squareOff string) {
	clock := func(m int) string { return fmt.Sprintf("%02d:%02d", m/60, m%60) }
	return clock(s.EntryNotBefore), clock(s.SquareOff)
}

// MustSquareOff reports whether open positions have to be flattened.
func (s Session) MustSquareOff(now time.Time) bool {
	if s.SquareOff == 0 {
		return false
	}
	return s.minuteOfDay(now) >= s.SquareOff
}
