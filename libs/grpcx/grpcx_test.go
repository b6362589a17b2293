package grpcx

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/md-rashed-zaman/meetsync/libs/auth"
)

func TestServerInterceptorAdoptsIncomingID(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "abc"))
	var seen string
	_, err := UnaryServerRequestIDInterceptor()(ctx, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, _ any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seen != "abc" {
		t.Fatalf("request id = %q, want abc", seen)
	}
}

func TestServerInterceptorMintsID(t *testing.T) {
	var seen string
	_, _ = UnaryServerRequestIDInterceptor()(context.Background(), nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, _ any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	})
	if len(seen) != 32 {
		t.Fatalf("expected a 32 char id, got %q", seen)
	}
}

func TestClientInterceptorSendsID(t *testing.T) {
	for _, tc := range []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"from context", WithRequestID(context.Background(), "req-1"), "req-1"},
		{"minted", context.Background(), ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var sent []string
			invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
				md, _ := metadata.FromOutgoingContext(ctx)
				sent = md.Get(RequestIDMetadataKey)
				return nil
			}
			if err := UnaryClientRequestIDInterceptor()(tc.ctx, "/svc/M", nil, nil, nil, invoker); err != nil {
				t.Fatalf("interceptor: %v", err)
			}
			if len(sent) != 1 || sent[0] == "" {
				t.Fatalf("unexpected metadata %v", sent)
			}
			if tc.want != "" && sent[0] != tc.want {
				t.Fatalf("sent %q, want %q", sent[0], tc.want)
			}
		})
	}
}

func TestWithRequestIDIgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	if WithRequestID(ctx, "") != ctx {
		t.Fatal("empty id should leave the context alone")
	}
}

type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (s stubVerifier) Verify(string) (*auth.Claims, error) { return s.claims, s.err }

func TestAuthInterceptor(t *testing.T) {
	withToken := func(token string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs(AuthorizationMetadataKey, "Bearer "+token))
	}
	cases := map[string]struct {
		ctx      context.Context
		verifier stubVerifier
		code     codes.Code
		subject  int64
	}{
		"valid":        {ctx: withToken("t"), verifier: stubVerifier{claims: &auth.Claims{Sub: "7"}}, code: codes.OK, subject: 7},
		"no metadata":  {ctx: context.Background(), verifier: stubVerifier{claims: &auth.Claims{Sub: "7"}}, code: codes.Unauthenticated},
		"bad token":    {ctx: withToken("t"), verifier: stubVerifier{err: auth.ErrInvalidToken}, code: codes.Unauthenticated},
		"non numeric":  {ctx: withToken("t"), verifier: stubVerifier{claims: &auth.Claims{Sub: "ana"}}, code: codes.Unauthenticated},
		"empty bearer": {ctx: withToken(""), verifier: stubVerifier{claims: &auth.Claims{Sub: "7"}}, code: codes.Unauthenticated},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var subject int64
			_, err := UnaryServerAuthInterceptor(tc.verifier)(tc.ctx, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, _ any) (any, error) {
				subject, _ = SubjectFromContext(ctx)
				return nil, nil
			})
			if got := status.Code(err); got != tc.code {
				t.Fatalf("code = %v, want %v", got, tc.code)
			}
			if subject != tc.subject {
				t.Fatalf("subject = %d, want %d", subject, tc.subject)
			}
		})
	}
}

func TestWithBearerToken(t *testing.T) {
	md, _ := metadata.FromOutgoingContext(WithBearerToken(context.Background(), "abc"))
	if got := md.Get(AuthorizationMetadataKey); len(got) != 1 || got[0] != "Bearer abc" {
		t.Fatalf("unexpected metadata %v", got)
	}
	ctx := context.Background()
	if WithBearerToken(ctx, "") != ctx {
		t.Fatal("empty token should leave the context alone")
	}
}
