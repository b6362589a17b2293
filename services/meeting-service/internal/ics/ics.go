// Package ics converts meetings to and from iCalendar.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
)

const productID = "-//meetsync//meeting-service//EN"

// Export renders meetings as a VCALENDAR feed. UIDs are stable per meeting id.
func Export(meetings []model.Meeting, domain string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetCalscale("GREGORIAN")

	for _, m := range meetings {
		ev := cal.AddEvent(fmt.Sprintf("meeting-%d@%s", m.ID, domain))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(m.Start.UTC())
		ev.SetEndAt(m.End.UTC())
		ev.SetSummary(m.Title)
		if !m.CreatedAt.IsZero() {
			ev.SetCreatedTime(m.CreatedAt.UTC())
		}
	}
	return cal.Serialize()
}

// BusyIntervals reads every timed VEVENT in r as a UTC busy interval.
// All-day and malformed events are skipped.
func BusyIntervals(r io.Reader) ([]availability.Interval, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	var busy []availability.Interval
	for _, ev := range cal.Events() {
		if p := ev.GetProperty(ical.ComponentPropertyDtStart); p == nil || !strings.Contains(p.Value, "T") {
			continue
		}
		start, err := ev.GetStartAt()
		if err != nil {
			continue
		}
		end, err := ev.GetEndAt()
		if err != nil || !end.After(start) {
			continue
		}
		busy = append(busy, availability.Interval{Start: start.UTC(), End: end.UTC()})
	}
	return busy, nil
}
