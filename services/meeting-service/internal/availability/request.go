package availability

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const DefaultDurationMinutes = 60

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidDuration     = errors.New("duration must be positive")
	ErrInvalidTimeOfDay    = errors.New("invalid time of day")
	ErrInvalidWorkingHours = errors.New("working hours start must be before end")
)

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func ValidateDuration(minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// ParticipantIDs parses raw ids, drops malformed ones, adds the requester
// and removes duplicates keeping first occurrence order.
func ParticipantIDs(requester int64, raw []string) []int64 {
	seen := make(map[int64]struct{}, len(raw)+1)
	ids := make([]int64, 0, len(raw)+1)
	add := func(id int64) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, r := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(r), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		add(id)
	}
	add(requester)
	return ids
}

// SearchWindow is [midnight, midnight+24h+duration) for date's UTC day, wide
// enough to hold every busy interval that can touch a grid slot.
func SearchWindow(date time.Time, durationMinutes int) Interval {
	start := Grid(date)[0]
	return Interval{
		Start: start,
		End:   start.Add(24*time.Hour + time.Duration(durationMinutes)*time.Minute),
	}
}

// SlotLayout renders UTC as "+00:00" rather than "Z".
const SlotLayout = "2006-01-02T15:04:05-07:00"

func FormatSlot(t time.Time) string {
	return t.UTC().Format(SlotLayout)
}
