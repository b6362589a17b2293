package auth

import (
	"strings"
	"time"
)

// Verifier accepts the HS256 tokens this service issues and, when a JWKS
// client is configured, RS256 tokens from an external identity provider.
type Verifier struct {
	secret string
	jwks   *JWKSClient
}

func NewVerifier(secret string, jwks *JWKSClient) *Verifier {
	return &Verifier{secret: secret, jwks: jwks}
}

func (v *Verifier) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	if v.jwks != nil {
		header, err := ParseHeader(token)
		if err != nil {
			return nil, err
		}
		if header.Alg == "RS256" && header.Kid != "" {
			pub, err := v.jwks.Get(header.Kid)
			if err != nil {
				return nil, ErrInvalidToken
			}
			return VerifyRS256(token, pub)
		}
	}
	return ParseAndVerifyHS256(token, v.secret)
}

// Issuer signs short-lived access tokens for logged-in users.
type Issuer struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(subject, username string) (string, error) {
	now := i.now()
	return SignHS256(Claims{
		Sub:      subject,
		Username: username,
		Iat:      now.Unix(),
		Exp:      now.Add(i.ttl).Unix(),
	}, i.secret)
}
