package grpcx

import (
	"context"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/md-rashed-zaman/meetsync/libs/auth"
)

const AuthorizationMetadataKey = "authorization"

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type subjectKey struct{}

// SubjectFromContext returns the user id of the verified caller, if any.
func SubjectFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(subjectKey{}).(int64)
	return id, ok
}

// WithBearerToken attaches token to outgoing calls made with ctx.
func WithBearerToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, AuthorizationMetadataKey, "Bearer "+token)
}

func incomingBearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(AuthorizationMetadataKey) {
		if strings.HasPrefix(v, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(v, "Bearer "))
		}
	}
	return ""
}

// UnaryServerAuthInterceptor rejects calls without a valid bearer token and
// stores the token's numeric subject on the context.
func UnaryServerAuthInterceptor(verifier TokenVerifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		token := incomingBearerToken(ctx)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		id, err := strconv.ParseInt(claims.Sub, 10, 64)
		if err != nil || id <= 0 {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return handler(context.WithValue(ctx, subjectKey{}, id), req)
	}
}
