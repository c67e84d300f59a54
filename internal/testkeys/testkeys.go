// Package testkeys builds RSA signing keys, JWKS documents and signed
// tokens for tests.
package testkeys

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/require"
)

// Key is an RSA key pair with a key identifier.
type Key struct {
	KID     string
	Private *rsa.PrivateKey
}

// Generate creates a 2048-bit RSA key labelled kid.
func Generate(t testing.TB, kid string) *Key {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return &Key{KID: kid, Private: privateKey}
}

// N returns the base64url modulus without padding.
func (k *Key) N() string {
	return base64.RawURLEncoding.EncodeToString(k.Private.N.Bytes())
}

// E returns the base64url exponent without padding.
func (k *Key) E() string {
	return base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.Private.E)).Bytes())
}

// Record returns the key as a map in JWKS record shape.
func (k *Key) Record() map[string]any {
	return map[string]any{
		"alg": "RS256",
		"kty": "RSA",
		"use": "sig",
		"n":   k.N(),
		"e":   k.E(),
		"kid": k.KID,
		"x5t": "thumb-" + k.KID,
		"x5c": []string{"MIIC" + k.KID},
	}
}

// JWKS serialises records into a JWKS document.
func JWKS(t testing.TB, records ...map[string]any) []byte {
	t.Helper()

	if records == nil {
		records = []map[string]any{}
	}
	doc, err := json.Marshal(map[string]any{"keys": records})
	require.NoError(t, err)
	return doc
}

// Serve starts a server publishing the public halves of keys as a JWKS
// document at every path. It is closed when the test ends.
func Serve(t testing.TB, keys ...*Key) *httptest.Server {
	t.Helper()

	records := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		records = append(records, k.Record())
	}
	document := JWKS(t, records...)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(document)
	}))
	t.Cleanup(server.Close)

	return server
}

// Sign returns a compact RS256 token carrying claims. The header kid is
// taken from k.KID unless it is empty.
func (k *Key) Sign(t testing.TB, claims map[string]any) string {
	t.Helper()

	token := jwt.New()
	for name, value := range claims {
		require.NoError(t, token.Set(name, value))
	}

	signingKey, err := jwk.Import(k.Private)
	require.NoError(t, err)
	if k.KID != "" {
		require.NoError(t, signingKey.Set(jwk.KeyIDKey, k.KID))
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256(), signingKey))
	require.NoError(t, err)

	return string(signed)
}

// WithKID returns a copy of k that signs with a different header kid.
func (k *Key) WithKID(kid string) *Key {
	return &Key{KID: kid, Private: k.Private}
}

// Claims returns a claim set valid for ten minutes.
func Claims(issuer, audience, subject string) map[string]any {
	now := time.Now()
	claims := map[string]any{
		jwt.IssuerKey:     issuer,
		jwt.AudienceKey:   []string{audience},
		jwt.IssuedAtKey:   now,
		jwt.ExpirationKey: now.Add(10 * time.Minute),
	}
	if subject != "" {
		claims[jwt.SubjectKey] = subject
	}
	return claims
}
