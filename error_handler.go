package jwtauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/profile-service/jwtauth/core"
)

var (
	// ErrJWTMissing is returned when the request carries no bearer token.
	ErrJWTMissing = core.ErrJWTMissing

	// ErrJWTInvalid is returned when a token was presented but not accepted.
	ErrJWTInvalid = core.ErrJWTInvalid
)

// ErrorHandler is called when a request fails authentication. err matches
// ErrJWTMissing or ErrJWTInvalid for authentication failures. Anything else
// is an internal error, such as a custom TokenExtractor failing. A custom
// handler MUST stop the request in every case.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ResponseFor maps err to a status code, a body and the WWW-Authenticate
// challenge to send. Every rejected token gets the same response whatever
// its ValidationError code. The challenge is empty for internal errors.
func ResponseFor(err error) (int, ErrorResponse, string) {
	switch {
	case errors.Is(err, ErrJWTMissing):
		return http.StatusUnauthorized,
			ErrorResponse{Error: "invalid_token", ErrorDescription: "JWT is missing"},
			"Bearer"
	case errors.Is(err, ErrJWTInvalid):
		return http.StatusUnauthorized,
			ErrorResponse{Error: "invalid_token", ErrorDescription: "JWT is invalid"},
			`Bearer error="invalid_token", error_description="JWT is invalid"`
	default:
		return http.StatusInternalServerError,
			ErrorResponse{Error: "server_error", ErrorDescription: "Something went wrong while checking the JWT"},
			""
	}
}

// DefaultErrorHandler is used when WithErrorHandler is not given. It writes
// a 401 with a Bearer challenge for missing or invalid tokens and a 500 for
// everything else.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status, body, challenge := ResponseFor(err)

	w.Header().Set("Content-Type", "application/json")
	if challenge != "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// missingError explains why a request counts as carrying no token. It
// matches ErrJWTMissing.
type missingError struct {
	reason string
}

func (e *missingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrJWTMissing, e.reason)
}

// Is allows the error to support equality to ErrJWTMissing.
func (e *missingError) Is(target error) bool {
	return target == ErrJWTMissing
}
