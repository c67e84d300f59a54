package jwtauth

import (
	"errors"
	"net/http"
	"strings"
)

// TokenExtractor returns the raw token carried by a request. A request
// without a usable token is an error matching ErrJWTMissing. Any other error
// is treated as an internal failure.
type TokenExtractor func(r *http.Request) (string, error)

// SubjectExtractor returns the subject a request is about, such as the
// profile ID in its path. An empty result disables the subject check.
type SubjectExtractor func(r *http.Request) string

// AuthHeaderTokenExtractor reads the token from an
// "Authorization: Bearer <token>" header. An absent header or any other
// scheme counts as a missing token.
func AuthHeaderTokenExtractor(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", &missingError{reason: "no Authorization header"}
	}

	authHeaderParts := strings.Fields(authHeader)
	if len(authHeaderParts) != 2 || !strings.EqualFold(authHeaderParts[0], "bearer") {
		return "", &missingError{reason: "Authorization header format must be Bearer {token}"}
	}

	return authHeaderParts[1], nil
}

// CookieTokenExtractor builds a TokenExtractor that reads the token from
// the named cookie.
func CookieTokenExtractor(cookieName string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if err != nil || cookie.Value == "" {
			return "", &missingError{reason: "no " + cookieName + " cookie"}
		}

		return cookie.Value, nil
	}
}

// MultiTokenExtractor tries each extractor in turn and returns the first
// token found. Extractors reporting a missing token are skipped. Any other
// error is returned immediately.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			token, err := ex(r)
			if errors.Is(err, ErrJWTMissing) {
				continue
			}
			if err != nil {
				return "", err
			}
			return token, nil
		}
		return "", &missingError{reason: "no extractor found a token"}
	}
}

// SubjectFromPath uses the last non-empty path segment as the subject, so
// "/api/profile/user-42/" binds the token to "user-42".
func SubjectFromPath(r *http.Request) string {
	segments := strings.Split(r.URL.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

// SubjectFromHeader builds a SubjectExtractor reading the named header, for
// routers that forward the matched path parameter in a header.
func SubjectFromHeader(name string) SubjectExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(name)
	}
}
