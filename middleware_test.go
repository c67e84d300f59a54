package jwtauth

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profile-service/jwtauth/core"
	"github.com/profile-service/jwtauth/internal/testkeys"
	"github.com/profile-service/jwtauth/jwks"
	"github.com/profile-service/jwtauth/kvstore"
)

const (
	issuer   = "https://tenant.example.com/"
	audience = "api://profiles"
)

// newTestCore returns a Core reading the keys of signers through a
// memory-backed cache.
func newTestCore(t *testing.T, signers ...*testkeys.Key) *core.Core {
	t.Helper()

	server := testkeys.Serve(t, signers...)

	cache, err := jwks.NewCache(kvstore.NewMemory())
	require.NoError(t, err)
	provider, err := jwks.NewProvider(jwks.WithCache(cache))
	require.NoError(t, err)

	c, err := core.New(
		core.WithKeySetProvider(provider),
		core.WithIssuer(issuer),
		core.WithAudience(audience),
		core.WithJWKSURL(server.URL),
	)
	require.NoError(t, err)

	return c
}

func Test_CheckJWT(t *testing.T) {
	signer := testkeys.Generate(t, "abc")
	c := newTestCore(t, signer)

	validToken := signer.Sign(t, testkeys.Claims(issuer, audience, "user-42"))
	noSubjectToken := signer.Sign(t, testkeys.Claims(issuer, audience, ""))

	testCases := []struct {
		name           string
		options        []Option
		method         string
		path           string
		authHeader     string
		wantStatusCode int
		wantBody       string
		wantChallenge  string
	}{
		{
			name:           "it can successfully validate a token",
			authHeader:     "Bearer " + validToken,
			path:           "/api/profile/user-42",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated.","subject":"user-42"}`,
		},
		{
			name:           "it binds the token to the subject in the path",
			options:        []Option{WithSubjectExtractor(SubjectFromPath)},
			authHeader:     "Bearer " + validToken,
			path:           "/api/profile/user-42",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated.","subject":"user-42"}`,
		},
		{
			name:           "it rejects a token for another subject",
			options:        []Option{WithSubjectExtractor(SubjectFromPath)},
			authHeader:     "Bearer " + validToken,
			path:           "/api/profile/user-99",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"error":"invalid_token","error_description":"JWT is invalid"}`,
			wantChallenge:  `Bearer error="invalid_token", error_description="JWT is invalid"`,
		},
		{
			name:           "it rejects a token without a subject",
			authHeader:     "Bearer " + noSubjectToken,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"error":"invalid_token","error_description":"JWT is invalid"}`,
			wantChallenge:  `Bearer error="invalid_token", error_description="JWT is invalid"`,
		},
		{
			name:           "it rejects a garbage token",
			authHeader:     "Bearer a.b.c",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"error":"invalid_token","error_description":"JWT is invalid"}`,
			wantChallenge:  `Bearer error="invalid_token", error_description="JWT is invalid"`,
		},
		{
			name:           "it fails when the Authorization header is missing",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"error":"invalid_token","error_description":"JWT is missing"}`,
			wantChallenge:  "Bearer",
		},
		{
			name:           "it treats a non-Bearer scheme as a missing token",
			authHeader:     "Basic dXNlcjpwYXNz",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"error":"invalid_token","error_description":"JWT is missing"}`,
			wantChallenge:  "Bearer",
		},
		{
			name:           "it skips validation on OPTIONS when configured",
			options:        []Option{WithValidateOnOptions(false)},
			method:         http.MethodOptions,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated.","subject":""}`,
		},
		{
			name:           "it validates OPTIONS by default",
			method:         http.MethodOptions,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"error":"invalid_token","error_description":"JWT is missing"}`,
			wantChallenge:  "Bearer",
		},
		{
			name:           "it skips excluded paths",
			options:        []Option{WithExclusionUrls([]string{"/healthz"})},
			path:           "/healthz",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated.","subject":""}`,
		},
		{
			name: "it fails with 500 when the token extractor errors",
			options: []Option{WithTokenExtractor(func(*http.Request) (string, error) {
				return "", errors.New("extraction blew up")
			})},
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"error":"server_error","error_description":"Something went wrong while checking the JWT"}`,
		},
		{
			name: "it uses a custom error handler",
			options: []Option{WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = fmt.Fprint(w, errors.Is(err, ErrJWTMissing))
			})},
			wantStatusCode: http.StatusTeapot,
			wantBody:       "true",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			middleware, err := New(append([]Option{WithCore(c)}, testCase.options...)...)
			require.NoError(t, err)

			handler := middleware.CheckJWT(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				subject := ""
				if claims, err := GetClaims(r.Context()); err == nil {
					subject = claims.Subject
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = fmt.Fprintf(w, `{"message":"Authenticated.","subject":%q}`, subject)
			}))

			method := testCase.method
			if method == "" {
				method = http.MethodGet
			}
			path := testCase.path
			if path == "" {
				path = "/api/profile/me"
			}

			request := httptest.NewRequest(method, path, nil)
			if testCase.authHeader != "" {
				request.Header.Set("Authorization", testCase.authHeader)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			response := recorder.Result()
			defer response.Body.Close()
			body, err := io.ReadAll(response.Body)
			require.NoError(t, err)

			assert.Equal(t, testCase.wantStatusCode, response.StatusCode)
			assert.JSONEq(t, testCase.wantBody, string(body))
			assert.Equal(t, testCase.wantChallenge, response.Header.Get("WWW-Authenticate"))
		})
	}
}

func Test_Authenticate(t *testing.T) {
	signer := testkeys.Generate(t, "abc")
	middleware, err := New(WithCore(newTestCore(t, signer)))
	require.NoError(t, err)

	t.Run("it returns the verified claims", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+signer.Sign(t, testkeys.Claims(issuer, audience, "user-42")))

		claims, err := middleware.Authenticate(request, "user-42")
		require.NoError(t, err)
		assert.Equal(t, "user-42", claims.Subject)
		assert.Equal(t, []string{audience}, claims.Audience)
	})

	t.Run("it returns ErrJWTMissing without a token", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)

		_, err := middleware.Authenticate(request, "user-42")
		assert.ErrorIs(t, err, ErrJWTMissing)
	})

	t.Run("it returns a validation error for a rejected token", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+signer.Sign(t, testkeys.Claims(issuer, audience, "user-42")))

		_, err := middleware.Authenticate(request, "user-99")
		assert.ErrorIs(t, err, ErrJWTInvalid)

		var validationErr *core.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, core.ErrorCodeTokenRejected, validationErr.Code)
	})
}

func Test_Subject(t *testing.T) {
	signer := testkeys.Generate(t, "abc")
	c := newTestCore(t, signer)
	request := httptest.NewRequest(http.MethodGet, "/api/profile/user-42", nil)

	t.Run("it returns an empty subject without an extractor", func(t *testing.T) {
		middleware, err := New(WithCore(c))
		require.NoError(t, err)

		assert.Empty(t, middleware.Subject(request))
	})

	t.Run("it returns the subject from the configured extractor", func(t *testing.T) {
		middleware, err := New(WithCore(c), WithSubjectExtractor(SubjectFromPath))
		require.NoError(t, err)

		assert.Equal(t, "user-42", middleware.Subject(request))
	})
}

func Test_New(t *testing.T) {
	t.Run("it requires a core", func(t *testing.T) {
		_, err := New()
		assert.ErrorIs(t, err, ErrCoreNil)
	})

	testCases := []struct {
		name    string
		option  Option
		wantErr error
	}{
		{name: "a nil core", option: WithCore(nil), wantErr: ErrCoreNil},
		{name: "a nil error handler", option: WithErrorHandler(nil), wantErr: ErrErrorHandlerNil},
		{name: "a nil token extractor", option: WithTokenExtractor(nil), wantErr: ErrTokenExtractorNil},
		{name: "a nil subject extractor", option: WithSubjectExtractor(nil), wantErr: ErrSubjectExtractorNil},
		{name: "an empty exclusion list", option: WithExclusionUrls(nil), wantErr: ErrExclusionUrlsEmpty},
		{name: "a nil logger", option: WithLogger(nil), wantErr: ErrLoggerNil},
	}

	for _, testCase := range testCases {
		t.Run("it rejects "+testCase.name, func(t *testing.T) {
			_, err := New(testCase.option)
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}
}
