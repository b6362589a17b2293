package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/md-rashed-zaman/meetsync/libs/grpcx"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/calendar"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/scheduling"
)

const (
	ServiceName        = "meetsched.v1.AvailabilityService"
	SuggestTimesMethod = "/" + ServiceName + "/SuggestTimes"
)

// AvailabilityServer answers SuggestTimes over loosely typed structs:
//
//	request:  {requester_id, participant_ids, date, duration}
//	response: {slots: ["2024-06-10T13:00:00+00:00", ...]}
//
// When the call carries a verified token, requester_id may be omitted and
// must otherwise equal the token's subject.
type AvailabilityServer interface {
	SuggestTimes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type Suggester interface {
	Suggest(ctx context.Context, requesterID int64, req scheduling.SuggestRequest) ([]time.Time, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AvailabilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SuggestTimes", Handler: suggestTimesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "meetsched/v1/availability.proto",
}

func suggestTimesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServer).SuggestTimes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SuggestTimesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServer).SuggestTimes(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type server struct {
	suggester Suggester
	logger    *slog.Logger
}

func Register(grpcServer *grpc.Server, suggester Suggester, logger *slog.Logger) {
	grpcServer.RegisterService(&serviceDesc, &server{suggester: suggester, logger: logger})
}

func (s *server) SuggestTimes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	requesterID, err := intField(fields["requester_id"], 0)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "requester_id must be a positive integer")
	}
	if caller, ok := grpcx.SubjectFromContext(ctx); ok {
		switch {
		case requesterID == 0:
			requesterID = caller
		case requesterID != caller:
			return nil, status.Error(codes.PermissionDenied, "requester_id does not match the token")
		}
	}
	if requesterID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "requester_id must be a positive integer")
	}
	duration, err := intField(fields["duration"], availability.DefaultDurationMinutes)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "duration must be a whole number of minutes")
	}
	ids, err := idsField(fields["participant_ids"])
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	slots, err := s.suggester.Suggest(ctx, requesterID, scheduling.SuggestRequest{
		ParticipantIDs:  ids,
		Date:            fields["date"].GetStringValue(),
		DurationMinutes: int(duration),
	})
	switch {
	case errors.Is(err, availability.ErrInvalidDate), errors.Is(err, availability.ErrInvalidDuration):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, calendar.ErrStoreUnavailable):
		return nil, status.Error(codes.Unavailable, "calendar temporarily unavailable")
	case err != nil:
		s.logger.ErrorContext(ctx, "suggest times failed", "requester_id", requesterID, "err", err)
		return nil, status.Error(codes.Internal, "failed to suggest times")
	}

	out := make([]any, 0, len(slots))
	for _, slot := range slots {
		out = append(out, availability.FormatSlot(slot))
	}
	return structpb.NewStruct(map[string]any{"slots": out})
}

// intField reads a whole number given as a JSON number or numeric string.
// A missing or null value yields fallback.
func intField(v *structpb.Value, fallback int64) (int64, error) {
	switch k := v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return fallback, nil
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("not a whole number: %v", n)
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		return strconv.ParseInt(strings.TrimSpace(k.StringValue), 10, 64)
	default:
		return 0, fmt.Errorf("unexpected value kind %T", k)
	}
}

// idsField flattens a list of numbers or strings into raw ids. Entries of
// other kinds are kept as empty strings so the id parser drops them.
func idsField(v *structpb.Value) ([]string, error) {
	switch k := v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_ListValue:
		out := make([]string, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			switch ik := item.GetKind().(type) {
			case *structpb.Value_NumberValue:
				out = append(out, strconv.FormatFloat(ik.NumberValue, 'f', -1, 64))
			case *structpb.Value_StringValue:
				out = append(out, ik.StringValue)
			default:
				out = append(out, "")
			}
		}
		return out, nil
	default:
		return nil, errors.New("participant_ids must be a list")
	}
}
