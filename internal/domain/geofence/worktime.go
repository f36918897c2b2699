package geofence

import (
	"fmt"
	"time"
)

const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, invalidf("time of day %02d:%02d out of range", hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay accepts "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, invalidf("time of day %q must be HH:MM", s)
	}
	return NewTimeOfDay(t.Hour(), t.Minute())
}

func (t TimeOfDay) Valid() bool { return t >= 0 && t < MinutesPerDay }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60) }

func (t TimeOfDay) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, invalidf("time of day %d out of range", int(t))
	}
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MinuteOfDay returns the wall-clock minute of ts in its own location.
func MinuteOfDay(ts time.Time) TimeOfDay {
	return TimeOfDay(ts.Hour()*60 + ts.Minute())
}

// WithinWorkWindow reports whether ts falls in [start, end]; both bounds count
// as work hours. Windows crossing midnight are not supported.
func WithinWorkWindow(ts time.Time, start, end TimeOfDay) bool {
	m := MinuteOfDay(ts)
	return m >= start && m <= end
}
