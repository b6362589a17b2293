package grpcserver

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/md-rashed-zaman/meetsync/libs/grpcx"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
)

type Client struct {
	conn  *grpc.ClientConn
	token string
}

// NewClient dials addr. A non-empty token is sent as a bearer token on every call.
func NewClient(ctx context.Context, addr, token string) (*Client, error) {
	conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, token: token}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// SuggestTimes asks the remote service for slots on date (YYYY-MM-DD). A zero
// requesterID lets the server take the requester from the token.
func (c *Client) SuggestTimes(ctx context.Context, requesterID int64, participantIDs []int64, date string, durationMinutes int) ([]time.Time, error) {
	ids := make([]any, 0, len(participantIDs))
	for _, id := range participantIDs {
		ids = append(ids, float64(id))
	}
	req, err := structpb.NewStruct(map[string]any{
		"requester_id":    float64(requesterID),
		"participant_ids": ids,
		"date":            date,
		"duration":        float64(durationMinutes),
	})
	if err != nil {
		return nil, err
	}

	resp := new(structpb.Struct)
	if err := c.conn.Invoke(grpcx.WithBearerToken(ctx, c.token), SuggestTimesMethod, req, resp); err != nil {
		return nil, err
	}

	values := resp.GetFields()["slots"].GetListValue().GetValues()
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		t, err := time.Parse(availability.SlotLayout, v.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("parse slot %q: %w", v.GetStringValue(), err)
		}
		out = append(out, t.UTC())
	}
	return out, nil
}
