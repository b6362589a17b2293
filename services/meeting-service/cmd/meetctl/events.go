package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/meetsync/libs/config"
	"github.com/md-rashed-zaman/meetsync/libs/kafkax"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/outbox"
)

type eventsOptions struct {
	brokers string
	group   string
	limit   int
}

// messageReader is satisfied by *kafka.Reader.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

func newEventsCmd() *cobra.Command {
	opts := eventsOptions{}
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow meeting created and deleted events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			brokers := kafkax.SplitBrokers(opts.brokers)
			if len(brokers) == 0 {
				return errors.New("no kafka brokers (set --brokers or KAFKA_BROKERS)")
			}
			reader := kafka.NewReader(kafka.ReaderConfig{
				Brokers:     brokers,
				GroupID:     opts.group,
				GroupTopics: []string{outbox.EventMeetingCreated, outbox.EventMeetingDeleted},
				MinBytes:    1,
				MaxBytes:    10e6,
			})
			return followEvents(cmd.Context(), reader, cmd.OutOrStdout(), opts.limit)
		},
	}
	cmd.Flags().StringVar(&opts.brokers, "brokers", config.String("KAFKA_BROKERS", "localhost:9092"), "comma separated kafka brokers")
	cmd.Flags().StringVar(&opts.group, "group", "meetctl", "consumer group id")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "stop after this many events (0 follows forever)")
	return cmd
}

// followEvents prints one line per meeting event until ctx ends, the reader
// fails for good, or limit events were printed.
func followEvents(ctx context.Context, reader messageReader, out io.Writer, limit int) error {
	defer reader.Close()

	for seen := 0; limit <= 0 || seen < limit; {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			logger.Error("kafka read error", "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		msgCtx := kafkax.ExtractTraceContext(ctx, msg)
		_, span := otel.Tracer("meetctl").Start(msgCtx, "kafka.consume",
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination", msg.Topic),
			),
		)
		meta := kafkax.ExtractEventMeta(msg)

		var payload outbox.MeetingPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Warn("skipping malformed event", "event_id", meta.EventID, "err", err)
			span.RecordError(err)
			span.End()
			continue
		}
		_, err = fmt.Fprintf(out, "%s\t%s\tmeeting=%d\towner=%d\t%s\t%s\t%q\n",
			meta.EventType, meta.EventID, payload.MeetingID, payload.OwnerID,
			availability.FormatSlot(payload.Start), availability.FormatSlot(payload.End), payload.Title)
		span.End()
		if err != nil {
			return err
		}
		seen++
	}
	return nil
}
