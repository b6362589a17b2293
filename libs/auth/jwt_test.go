package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHS256RoundTrip(t *testing.T) {
	claims := Claims{
		Sub:      "42",
		Username: "alice",
		Iat:      time.Now().Unix(),
		Exp:      time.Now().Add(1 * time.Hour).Unix(),
	}
	secret := "test-secret"

	token, err := SignHS256(claims, secret)
	require.NoError(t, err)

	parsed, err := ParseAndVerifyHS256(token, secret)
	require.NoError(t, err)
	assert.Equal(t, claims, *parsed)

	_, err = ParseAndVerifyHS256(token, "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256RejectsExpiredAndSubjectless(t *testing.T) {
	expired, err := SignHS256(Claims{Sub: "1", Exp: time.Now().Add(-time.Minute).Unix()}, "s")
	require.NoError(t, err)
	_, err = ParseAndVerifyHS256(expired, "s")
	assert.ErrorIs(t, err, ErrInvalidToken)

	anonymous, err := SignHS256(Claims{Exp: time.Now().Add(time.Minute).Unix()}, "s")
	require.NoError(t, err)
	_, err = ParseAndVerifyHS256(anonymous, "s")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRS256Verify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	claims := Claims{
		Sub:      "7",
		Username: "bob",
		Iat:      time.Now().Unix(),
		Exp:      time.Now().Add(1 * time.Hour).Unix(),
	}

	token, err := signRS256(claims, key, "kid-1")
	require.NoError(t, err)

	parsed, err := VerifyRS256(token, &key.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, claims.Sub, parsed.Sub)
	assert.Equal(t, claims.Username, parsed.Username)
}

func TestVerifier_UsesJWKSForRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(jwks{Keys: []jwk{{
			Kty: "RSA",
			Kid: "kid-1",
			N:   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString([]byte{1, 0, 1}),
		}}})
	}))
	defer srv.Close()

	v := NewVerifier("hs-secret", NewJWKSClient(srv.URL, time.Minute))

	rsToken, err := signRS256(Claims{Sub: "9", Exp: time.Now().Add(time.Hour).Unix()}, key, "kid-1")
	require.NoError(t, err)
	claims, err := v.Verify(rsToken)
	require.NoError(t, err)
	assert.Equal(t, "9", claims.Sub)

	hsToken, err := NewIssuer("hs-secret", time.Hour).Issue("10", "carol")
	require.NoError(t, err)
	claims, err = v.Verify(hsToken)
	require.NoError(t, err)
	assert.Equal(t, "10", claims.Sub)
	assert.Equal(t, "carol", claims.Username)

	unknownKid, err := signRS256(Claims{Sub: "9"}, key, "kid-2")
	require.NoError(t, err)
	_, err = v.Verify(unknownKid)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_SetsExpiry(t *testing.T) {
	fixed := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	iss := NewIssuer("s", 0)
	iss.now = func() time.Time { return fixed }

	token, err := iss.Issue("1", "alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims Claims
	require.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, fixed.Unix(), claims.Iat)
	assert.Equal(t, fixed.Add(time.Hour).Unix(), claims.Exp)
}

func signRS256(claims Claims, key *rsa.PrivateKey, kid string) (string, error) {
	headerJSON, err := json.Marshal(Header{Alg: "RS256", Typ: "JWT", Kid: kid})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	unsigned := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	hash := sha256.Sum256([]byte(unsigned))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, hash[:])
	if err != nil {
		return "", err
	}
	return unsigned + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}
