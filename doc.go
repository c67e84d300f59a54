/*
Package jwtauth provides HTTP middleware that authenticates requests with
RS256 bearer tokens checked against an identity provider's JWKS.

The middleware is a thin net/http adapter over core.Core. Framework
adapters live in framework/gin, framework/echo and integrations/grpc.

# Quick Start

	import (
	    "github.com/profile-service/jwtauth"
	    "github.com/profile-service/jwtauth/config"
	    "github.com/profile-service/jwtauth/core"
	    "github.com/profile-service/jwtauth/jwks"
	    "github.com/profile-service/jwtauth/kvstore"
	)

	func main() {
	    cfg, err := config.Load(ctx, config.EnvSource("PROFILE"))
	    if err != nil {
	        log.Fatal(err)
	    }

	    cache, err := jwks.NewCache(kvstore.NewMemory(), jwks.WithCacheTTL(cfg.CacheTTL))
	    if err != nil {
	        log.Fatal(err)
	    }
	    provider, err := jwks.NewProvider(jwks.WithCache(cache))
	    if err != nil {
	        log.Fatal(err)
	    }

	    c, err := core.New(core.WithKeySetProvider(provider), core.WithConfig(cfg))
	    if err != nil {
	        log.Fatal(err)
	    }

	    middleware, err := jwtauth.New(
	        jwtauth.WithCore(c),
	        jwtauth.WithSubjectExtractor(jwtauth.SubjectFromPath),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.Handle("/api/profile/", middleware.CheckJWT(profileHandler))
	    http.ListenAndServe(":8080", nil)
	}

# Accessing Claims

	func profileHandler(w http.ResponseWriter, r *http.Request) {
	    claims, err := jwtauth.GetClaims(r.Context())
	    if err != nil {
	        http.Error(w, "Unauthorized", http.StatusUnauthorized)
	        return
	    }
	    fmt.Fprintf(w, "Hello, %s!", claims.Subject)
	}

# Configuration Options

Required:
  - WithCore: the token checker, usually a *core.Core

Optional:
  - WithSubjectExtractor: bind each token to the subject of the request
  - WithValidateOnOptions: validate JWT on OPTIONS requests (default true)
  - WithErrorHandler: custom error response handler
  - WithTokenExtractor: custom token extraction logic
  - WithExclusionUrls: URLs to skip JWT validation
  - WithLogger: structured logging (compatible with log/slog)

Credentials are always required. A request without a token, or with an
Authorization header that is not "Bearer <token>", fails with ErrJWTMissing.

# Subject Binding

A token is only accepted for the subject it names. SubjectFromPath takes the
last path segment, so GET /api/profile/user-42 needs a token whose sub is
"user-42". SubjectFromHeader reads a header set by an upstream router.
Routers with named parameters can call Authenticate directly:

	claims, err := middleware.Authenticate(r, chi.URLParam(r, "id"))

# Error Handling

DefaultErrorHandler answers 401 with a WWW-Authenticate challenge for
missing and invalid tokens and 500 for anything else. All rejected tokens
get the same body, whatever their core.ValidationError code. Custom handlers
can inspect the error:

	func myErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	    var validationErr *core.ValidationError
	    if errors.As(err, &validationErr) && validationErr.Code == core.ErrorCodeJWKSFetchFailed {
	        log.Printf("identity provider unavailable: %v", err)
	    }
	    jwtauth.DefaultErrorHandler(w, r, err)
	}

# Logging

Logger matches log/slog. NewLogrusLogger, NewZapLogger and NewZerologLogger
adapt the other common loggers, turning key/value pairs into fields.

# Metrics and Tracing

PrometheusMetrics satisfies both core.Metrics and jwks.Metrics:

	metrics := jwtauth.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	provider, _ := jwks.NewProvider(jwks.WithCache(cache), jwks.WithMetrics(metrics))
	c, _ := core.New(
	    core.WithKeySetProvider(provider),
	    core.WithConfig(cfg),
	    core.WithMetrics(metrics),
	    core.WithTracer(jwtauth.Tracer(nil)),
	)
*/
package jwtauth
