package availability

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// TimeOfDay is the offset from local midnight.
type TimeOfDay time.Duration

const (
	DefaultWorkStart = TimeOfDay(9 * time.Hour)
	DefaultWorkEnd   = TimeOfDay(17 * time.Hour)
)

func ClockOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// ParseTimeOfDay accepts "HH:MM" in 24h form.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	return ClockOf(t), nil
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// WorkingHours is the local window [Start, End) in which a meeting may begin.
type WorkingHours struct {
	Start TimeOfDay
	End   TimeOfDay
}

func DefaultWorkingHours() WorkingHours {
	return WorkingHours{Start: DefaultWorkStart, End: DefaultWorkEnd}
}

func (h WorkingHours) Contains(t TimeOfDay) bool {
	return t >= h.Start && t < h.End
}

func (h WorkingHours) Validate() error {
	if h.Start < 0 || h.End > TimeOfDay(24*time.Hour) || h.Start >= h.End {
		return fmt.Errorf("%w: %s-%s", ErrInvalidWorkingHours, h.Start, h.End)
	}
	return nil
}

// LoadLocation resolves an IANA name, using UTC for empty or unknown names.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ValidTimezone reports whether name is a loadable IANA zone.
func ValidTimezone(name string) bool {
	if name == "" || name == "Local" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}
