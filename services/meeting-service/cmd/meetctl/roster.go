package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/ics"
)

// Roster is the YAML file meetctl reads:
//
//	requester: 1
//	participants:
//	  - id: 1
//	    name: ana
//	    timezone: Europe/Berlin
//	    working_hours: {start: "08:00", end: "16:00"}
//	    busy:
//	      - {start: "2024-06-10T09:00:00Z", end: "2024-06-10T10:00:00Z"}
//	    ics: ana.ics
type Roster struct {
	Requester    int64          `yaml:"requester"`
	Participants []RosterMember `yaml:"participants"`
}

type RosterMember struct {
	ID           int64          `yaml:"id"`
	Name         string         `yaml:"name"`
	Timezone     string         `yaml:"timezone"`
	WorkingHours *RosterHours   `yaml:"working_hours"`
	Busy         []RosterWindow `yaml:"busy"`
	ICS          string         `yaml:"ics"`
}

type RosterHours struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type RosterWindow struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// LoadRoster reads path. Relative ics paths resolve against the roster's directory.
func LoadRoster(path string) (Roster, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, err
	}
	var r Roster
	if err := yaml.Unmarshal(body, &r); err != nil {
		return Roster{}, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if len(r.Participants) == 0 {
		return Roster{}, errors.New("roster has no participants")
	}
	dir := filepath.Dir(path)
	for i, m := range r.Participants {
		if m.ID <= 0 {
			return Roster{}, fmt.Errorf("participant %d: id must be positive", i+1)
		}
		if m.ICS != "" && !filepath.IsAbs(m.ICS) {
			r.Participants[i].ICS = filepath.Join(dir, m.ICS)
		}
	}
	if r.Requester == 0 {
		r.Requester = r.Participants[0].ID
	}
	return r, nil
}

// IDs returns every participant id except the requester.
func (r Roster) IDs() []int64 {
	out := make([]int64, 0, len(r.Participants))
	for _, m := range r.Participants {
		if m.ID != r.Requester {
			out = append(out, m.ID)
		}
	}
	return out
}

// Resolve converts the roster into slot search input. The requester
// always takes part; unknown ids in only are ignored. A nil only means everyone.
func (r Roster) Resolve(only []int64) ([]availability.Participant, error) {
	wanted := map[int64]bool{r.Requester: true}
	for _, id := range only {
		wanted[id] = true
	}

	var out []availability.Participant
	seen := map[int64]bool{}
	for _, m := range r.Participants {
		if seen[m.ID] || (only != nil && !wanted[m.ID]) {
			continue
		}
		seen[m.ID] = true
		p, err := m.participant()
		if err != nil {
			return nil, fmt.Errorf("participant %d: %w", m.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (m RosterMember) participant() (availability.Participant, error) {
	p := availability.Participant{
		ID:       m.ID,
		Timezone: m.Timezone,
		Hours:    availability.DefaultWorkingHours(),
	}
	if m.WorkingHours != nil {
		var err error
		if p.Hours.Start, err = availability.ParseTimeOfDay(m.WorkingHours.Start); err != nil {
			return p, err
		}
		if p.Hours.End, err = availability.ParseTimeOfDay(m.WorkingHours.End); err != nil {
			return p, err
		}
		if err := p.Hours.Validate(); err != nil {
			return p, err
		}
	}
	for _, w := range m.Busy {
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(w.Start))
		if err != nil {
			return p, fmt.Errorf("busy start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, strings.TrimSpace(w.End))
		if err != nil {
			return p, fmt.Errorf("busy end: %w", err)
		}
		if !end.After(start) {
			return p, fmt.Errorf("busy window %s ends before it starts", w.Start)
		}
		p.Busy = append(p.Busy, availability.Interval{Start: start.UTC(), End: end.UTC()})
	}
	if m.ICS != "" {
		f, err := os.Open(m.ICS)
		if err != nil {
			return p, err
		}
		defer f.Close()
		busy, err := ics.BusyIntervals(f)
		if err != nil {
			return p, fmt.Errorf("read %s: %w", m.ICS, err)
		}
		p.Busy = append(p.Busy, busy...)
	}
	return p, nil
}
