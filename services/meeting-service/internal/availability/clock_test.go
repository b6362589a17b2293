package availability

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != TimeOfDay(9*time.Hour+30*time.Minute) {
		t.Fatalf("unexpected value %v", time.Duration(got))
	}
	if got.String() != "09:30" {
		t.Fatalf("expected 09:30, got %s", got)
	}

	for _, raw := range []string{"9", "25:00", "09:60", "nine"} {
		if _, err := ParseTimeOfDay(raw); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Fatalf("%q: expected ErrInvalidTimeOfDay, got %v", raw, err)
		}
	}
}

func TestWorkingHours(t *testing.T) {
	h := DefaultWorkingHours()
	if !h.Contains(DefaultWorkStart) {
		t.Fatalf("start must be inside the window")
	}
	if h.Contains(DefaultWorkEnd) {
		t.Fatalf("end must be outside the window")
	}
	if err := h.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (WorkingHours{Start: DefaultWorkEnd, End: DefaultWorkStart}).Validate(); !errors.Is(err, ErrInvalidWorkingHours) {
		t.Fatalf("expected ErrInvalidWorkingHours, got %v", err)
	}
}

func TestClockOfUsesLocalTime(t *testing.T) {
	ny := LoadLocation("America/New_York")
	if got := ClockOf(at(13, 0).In(ny)); got != DefaultWorkStart {
		t.Fatalf("expected 09:00 in New York, got %s", got)
	}
	kathmandu := LoadLocation("Asia/Kathmandu")
	if got := ClockOf(at(3, 15).In(kathmandu)).String(); got != "09:00" {
		t.Fatalf("expected 09:00 in Kathmandu, got %s", got)
	}
}

func TestLoadLocation(t *testing.T) {
	if LoadLocation("") != time.UTC || LoadLocation("Not/AZone") != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
	if LoadLocation("Europe/Paris").String() != "Europe/Paris" {
		t.Fatalf("expected Europe/Paris")
	}
	if ValidTimezone("Not/AZone") || ValidTimezone("") || !ValidTimezone("Asia/Tokyo") {
		t.Fatalf("unexpected ValidTimezone result")
	}
}

func TestTimezones(t *testing.T) {
	zones := Timezones()
	if len(zones) == 0 {
		t.Fatalf("expected at least one zone")
	}
	for i := 1; i < len(zones); i++ {
		if zones[i-1] >= zones[i] {
			t.Fatalf("zones not sorted at %d: %s >= %s", i, zones[i-1], zones[i])
		}
	}
	zones[0] = "mutated"
	if Timezones()[0] == "mutated" {
		t.Fatalf("Timezones must return a copy")
	}
}
