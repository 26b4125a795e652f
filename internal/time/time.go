package time

import (
	"fmt"
	"sort"
	"time"
	// exchange locations must resolve without a system zoneinfo
	_ "time/tzdata"

	"github.com/drakos74/tradescore/internal/model"
)

const (
	dayLayout   = "2006-01-02"
	clockLayout = "15:04"
)

// DefaultLocation is the exchange time zone used when none is configured.
const DefaultLocation = "Asia/Tokyo"

// Clock is a wall clock time within a session, in minutes after midnight.
type Clock int

// ParseClock parses a clock label of the form 15:04.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("could not parse clock '%s': %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// ClockOf returns the wall clock of the given time.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalText encodes the clock as 15:04.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes the clock from 15:04.
func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// On returns the time of the clock on the day of t in the given location.
func (c Clock) On(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, loc)
}

// Location loads the given location, falling back to the exchange default.
func Location(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultLocation
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("could not load location '%s': %w", name, err)
	}
	return loc, nil
}

// Day returns the trading day key of the given time.
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// ParseDay parses a trading day key in the given location.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse day '%s': %w", s, err)
	}
	return t, nil
}

// Weekday returns the english weekday label of the given time.
func Weekday(t time.Time, loc *time.Location) string {
	return t.In(loc).Weekday().String()
}

// Session is the group of bars of one trading day.
type Session struct {
	Day  string
	Bars []model.PriceBar
}

// Sessions splits time ordered bars into trading day sessions.
func Sessions(bars []model.PriceBar, loc *time.Location) []Session {
	sessions := make([]Session, 0)
	for _, b := range bars {
		day := Day(b.Time, loc)
		n := len(sessions)
		if n == 0 || sessions[n-1].Day != day {
			sessions = append(sessions, Session{
				Day:  day,
				Bars: make([]model.PriceBar, 0),
			})
			n++
		}
		sessions[n-1].Bars = append(sessions[n-1].Bars, b)
	}
	return sessions
}

// Index returns the position of the session for the given day.
func Index(sessions []Session, day string) (int, bool) {
	i := sort.Search(len(sessions), func(i int) bool {
		return sessions[i].Day >= day
	})
	if i < len(sessions) && sessions[i].Day == day {
		return i, true
	}
	return i, false
}
