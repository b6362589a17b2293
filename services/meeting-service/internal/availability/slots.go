package availability

import (
	"sort"
	"time"
)

const (
	GridStep       = 30 * time.Minute
	GridPoints     = 48
	MaxSuggestions = 5
)

// Interval is a half-open UTC range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(start, end time.Time) bool {
	return i.Start.Before(end) && i.End.After(start)
}

// Participant is everything the slot search needs to know about one attendee.
type Participant struct {
	ID       int64
	Timezone string
	Hours    WorkingHours
	Busy     []Interval
}

// FindSlots returns up to MaxSuggestions start instants on the half-hour UTC
// grid of date at which a meeting of durationMinutes suits every participant.
// A slot suits a participant when its start falls inside their working hours,
// read in their own timezone, and [start, start+duration) misses all of their
// busy intervals. Only the start instant is checked against working hours.
func FindSlots(date time.Time, durationMinutes int, participants []Participant) []time.Time {
	if durationMinutes <= 0 || len(participants) == 0 {
		return nil
	}
	duration := time.Duration(durationMinutes) * time.Minute
	prepared := prepare(participants)

	var slots []time.Time
	for _, start := range Grid(date) {
		end := start.Add(duration)
		if fitsAll(prepared, start, end) {
			slots = append(slots, start)
			if len(slots) == MaxSuggestions {
				break
			}
		}
	}
	return slots
}

// Grid returns the GridPoints candidate starts beginning at UTC midnight of date's calendar day.
func Grid(date time.Time) []time.Time {
	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	grid := make([]time.Time, GridPoints)
	for i := range grid {
		grid[i] = midnight.Add(time.Duration(i) * GridStep)
	}
	return grid
}

type preparedParticipant struct {
	loc   *time.Location
	hours WorkingHours
	busy  []Interval // sorted by Start
}

func prepare(participants []Participant) []preparedParticipant {
	out := make([]preparedParticipant, len(participants))
	for i, p := range participants {
		busy := make([]Interval, len(p.Busy))
		copy(busy, p.Busy)
		sort.SliceStable(busy, func(a, b int) bool { return busy[a].Start.Before(busy[b].Start) })
		out[i] = preparedParticipant{
			loc:   LoadLocation(p.Timezone),
			hours: p.Hours,
			busy:  busy,
		}
	}
	return out
}

func fitsAll(participants []preparedParticipant, start, end time.Time) bool {
	for _, p := range participants {
		if !p.hours.Contains(ClockOf(start.In(p.loc))) {
			return false
		}
		if overlapsAny(start, end, p.busy) {
			return false
		}
	}
	return true
}

// overlapsAny expects busy sorted by Start; once an interval starts at or
// after end no later one can overlap.
func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if !b.Start.Before(end) {
			return false
		}
		if b.End.After(start) {
			return true
		}
	}
	return false
}
