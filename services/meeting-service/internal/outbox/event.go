package outbox

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
)

const (
	AggregateMeeting = "meeting"

	EventMeetingCreated = "meeting.created.v1"
	EventMeetingDeleted = "meeting.deleted.v1"
)

// Event is the envelope written to the outbox table; its EventType doubles as the Kafka topic.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// MeetingPayload is the JSON body of both meeting events.
type MeetingPayload struct {
	MeetingID      int64     `json:"meeting_id"`
	Title          string    `json:"title"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	OwnerID        int64     `json:"owner_id"`
	ParticipantIDs []int64   `json:"participant_ids,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func MeetingCreated(m model.Meeting, at time.Time) (Event, error) {
	return meetingEvent(EventMeetingCreated, m, at)
}

func MeetingDeleted(m model.Meeting, at time.Time) (Event, error) {
	return meetingEvent(EventMeetingDeleted, m, at)
}

func meetingEvent(eventType string, m model.Meeting, at time.Time) (Event, error) {
	payload, err := json.Marshal(MeetingPayload{
		MeetingID:      m.ID,
		Title:          m.Title,
		Start:          m.Start.UTC(),
		End:            m.End.UTC(),
		OwnerID:        m.OwnerID,
		ParticipantIDs: m.ParticipantIDs,
		OccurredAt:     at.UTC(),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: AggregateMeeting,
		AggregateID:   strconv.FormatInt(m.ID, 10),
		EventType:     eventType,
		Payload:       payload,
	}, nil
}
