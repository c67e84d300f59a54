package validator

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/profile-service/jwtauth/jwks"
)

// ErrNoMatchingKey is the only error Verify returns. It does not say which
// check failed.
var ErrNoMatchingKey = errors.New("no key in the set verifies the token")

// Logger is the optional logging interface used by the Validator.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Validator verifies RS256 tokens against every key of a JWKS document.
type Validator struct {
	now              func() time.Time
	allowedClockSkew time.Duration
	logger           Logger
}

var defaultValidator = &Validator{now: time.Now}

// New sets up a Validator.
//
// Example:
//
//	v, err := validator.New(
//	    validator.WithAllowedClockSkew(30*time.Second),
//	    validator.WithLogger(slog.Default()),
//	)
func New(opts ...Option) (*Validator, error) {
	v := &Validator{now: time.Now}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return v, nil
}

// Verify checks token with a Validator using the system clock and no skew.
func Verify(set *jwks.KeySet, token string, policy *Policy) (*Claims, error) {
	return defaultValidator.Verify(set, token, policy)
}

// Verify tries each key of set in document order and returns the claims of
// the first attempt that passes. Every attempt runs against a copy of policy
// bound to the key's kid, so a signature from one key is never accepted
// under another key's identifier. Records that do not decode are skipped.
//
// Every failure, including an empty set or a garbage token, is reported as
// ErrNoMatchingKey.
func (v *Validator) Verify(set *jwks.KeySet, token string, policy *Policy) (*Claims, error) {
	if set == nil || len(set.Keys) == 0 {
		v.debug("No keys to verify with")
		return nil, ErrNoMatchingKey
	}

	headerKID, err := inspectHeader(token)
	if err != nil {
		v.debug("Rejected malformed token", "error", err)
		return nil, ErrNoMatchingKey
	}

	for i, record := range set.Keys {
		key, err := jwks.Decode(record)
		if err != nil {
			v.debug("Skipping undecodable key", "index", i, "kid", record.KeyID, "error", err)
			continue
		}

		claims, err := v.verifyWithKey(key, headerKID, token, policy.WithKeyID(record.KeyID))
		if err != nil {
			v.debug("Key did not verify token", "index", i, "kid", record.KeyID, "error", err)
			continue
		}

		return claims, nil
	}

	return nil, ErrNoMatchingKey
}

func (v *Validator) verifyWithKey(key jwk.Key, headerKID, token string, policy *Policy) (*Claims, error) {
	if policy.RequiredKeyID != "" && headerKID != policy.RequiredKeyID {
		return nil, fmt.Errorf("token kid %q does not match key kid %q", headerKID, policy.RequiredKeyID)
	}

	now := v.now()
	parsed, err := jwt.Parse(
		[]byte(token),
		jwt.WithKey(jwa.RS256(), key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
		jwt.WithAcceptableSkew(v.allowedClockSkew),
	)
	if err != nil {
		return nil, err
	}

	claims := claimsOf(parsed)
	if err := checkPolicy(claims, policy, now); err != nil {
		return nil, err
	}

	return claims, nil
}

func checkPolicy(claims *Claims, policy *Policy, now time.Time) error {
	if len(policy.Issuers) > 0 && !slices.Contains(policy.Issuers, claims.Issuer) {
		return fmt.Errorf("issuer %q is not accepted", claims.Issuer)
	}

	if len(policy.Audiences) > 0 && !slices.ContainsFunc(claims.Audience, func(aud string) bool {
		return slices.Contains(policy.Audiences, aud)
	}) {
		return fmt.Errorf("audience %v is not accepted", claims.Audience)
	}

	if policy.Subject != "" && claims.Subject != policy.Subject {
		return fmt.Errorf("subject %q does not match %q", claims.Subject, policy.Subject)
	}

	if policy.MaxValidity > 0 {
		if claims.IssuedAt == 0 {
			return errors.New("token has no iat claim")
		}
		if age := now.Sub(time.Unix(claims.IssuedAt, 0)); age > policy.MaxValidity {
			return fmt.Errorf("token age %s exceeds %s", age, policy.MaxValidity)
		}
	}

	return nil
}

// inspectHeader checks the token shape and returns the header kid, which
// is empty when absent. The signature algorithm must be RS256.
func inspectHeader(token string) (string, error) {
	if err := validateTokenFormat(token); err != nil {
		return "", err
	}

	msg, err := jws.Parse([]byte(token))
	if err != nil {
		return "", fmt.Errorf("could not parse the token: %w", err)
	}

	signatures := msg.Signatures()
	if len(signatures) != 1 {
		return "", fmt.Errorf("expected one signature, got %d", len(signatures))
	}

	headers := signatures[0].ProtectedHeaders()
	alg, ok := headers.Algorithm()
	if !ok || alg.String() != jwa.RS256().String() {
		return "", fmt.Errorf("unsupported signing algorithm %q", alg)
	}

	kid, _ := headers.KeyID()
	return kid, nil
}

func claimsOf(token jwt.Token) *Claims {
	claims := &Claims{}
	claims.Issuer, _ = token.Issuer()
	claims.Subject, _ = token.Subject()
	claims.Audience, _ = token.Audience()
	claims.ID, _ = token.JwtID()

	if exp, ok := token.Expiration(); ok {
		claims.Expiry = exp.Unix()
	}
	if nbf, ok := token.NotBefore(); ok {
		claims.NotBefore = nbf.Unix()
	}
	if iat, ok := token.IssuedAt(); ok {
		claims.IssuedAt = iat.Unix()
	}

	return claims
}

func (v *Validator) debug(msg string, args ...any) {
	if v.logger != nil {
		v.logger.Debug(msg, args...)
	}
}
