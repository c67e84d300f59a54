package validator

import (
	"errors"
	"strings"
)

var (
	// errMalformedToken is returned when the token is not a compact JWS.
	errMalformedToken = errors.New("token is not a compact JWS")
	// errOversizedToken is returned for tokens above maxTokenSize.
	errOversizedToken = errors.New("token exceeds maximum size")
)

const (
	// maxTokenSize bounds the token before any parsing. Bearer tokens
	// issued by the identity provider are a few kilobytes at most.
	maxTokenSize = 64 * 1024
)

// validateTokenFormat rejects inputs that cannot be an RS256 compact JWS
// before they reach the parser.
func validateTokenFormat(token string) error {
	if len(token) == 0 {
		return errors.New("token is empty")
	}

	if len(token) > maxTokenSize {
		return errOversizedToken
	}

	if strings.Count(token, ".") != 2 {
		return errMalformedToken
	}

	return nil
}
