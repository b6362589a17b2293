package httpx

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/meetsync/libs/auth"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   int64
	Username string
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// Authenticate resolves the request's bearer token into a Principal.
func Authenticate(r *http.Request, verifier TokenVerifier) (Principal, error) {
	token, ok := BearerToken(r)
	if !ok {
		return Principal{}, auth.ErrInvalidToken
	}
	claims, err := verifier.Verify(token)
	if err != nil {
		return Principal{}, err
	}
	id, err := strconv.ParseInt(claims.Sub, 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, auth.ErrInvalidToken
	}
	return Principal{UserID: id, Username: claims.Username}, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller on the request context.
func RequireAuth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := BearerToken(r); !ok {
				http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}
			p, err := Authenticate(r, verifier)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
