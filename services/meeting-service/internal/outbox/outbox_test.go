package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/md-rashed-zaman/meetsync/libs/kafkax"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
)

func TestMeetingCreatedPayload(t *testing.T) {
	at := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	m := model.Meeting{
		ID:             12,
		Title:          "Planning",
		Start:          time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		End:            time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
		OwnerID:        1,
		ParticipantIDs: []int64{1, 2},
	}
	evt, err := MeetingCreated(m, at)
	require.NoError(t, err)
	assert.Equal(t, AggregateMeeting, evt.AggregateType)
	assert.Equal(t, "12", evt.AggregateID)
	assert.Equal(t, EventMeetingCreated, evt.EventType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(evt.Payload, &body))
	assert.Equal(t, "Planning", body["title"])
	assert.Equal(t, "2024-06-10T09:00:00Z", body["start"])
	assert.Equal(t, []any{1.0, 2.0}, body["participant_ids"])

	deleted, err := MeetingDeleted(m, at)
	require.NoError(t, err)
	assert.Equal(t, EventMeetingDeleted, deleted.EventType)
}

func TestMessagesCarryHeadersAndTrace(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	records := []Record{
		{
			ID:          1,
			EventID:     "0b9c6a1e-6a47-4c0c-9c79-1b1d3d1f0c11",
			AggregateID: "12",
			EventType:   EventMeetingCreated,
			Payload:     []byte(`{"meeting_id":12}`),
			Traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
		},
		{ID: 2, EventID: "e2", AggregateID: "13", EventType: EventMeetingDeleted},
	}

	msgs := Messages(context.Background(), records)
	require.Len(t, msgs, 2)

	first := msgs[0]
	assert.Equal(t, EventMeetingCreated, first.Topic)
	assert.Equal(t, []byte("12"), first.Key)
	assert.Equal(t, kafkax.EventMeta{EventID: records[0].EventID, EventType: EventMeetingCreated}, kafkax.ExtractEventMeta(first))
	assert.Equal(t, records[0].Traceparent, kafkax.HeaderValue(first.Headers, "traceparent"))

	assert.Empty(t, kafkax.HeaderValue(msgs[1].Headers, "traceparent"))
}
