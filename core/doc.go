/*
Package core authenticates bearer tokens independently of the transport
(HTTP, gin, echo, gRPC).

# Architecture

	┌──────────────────────────────────────────┐
	│  Transport adapters (net/http, gin,      │
	│  echo, gRPC): extract token and subject  │
	└────────────────────┬─────────────────────┘
	                     ▼
	┌──────────────────────────────────────────┐
	│  Core.CheckToken                         │
	│  • JWKS URL from config or discovery     │
	│  • policy from config + subject hint     │
	│  • subject required on success           │
	└──────────┬───────────────────┬───────────┘
	           ▼                   ▼
	  jwks.Provider.Get    validator.Verify
	  (cache, then HTTP)   (try every key)

# Basic Usage

	cache, err := jwks.NewCache(store, jwks.WithCacheTTL(cfg.CacheTTL))
	if err != nil {
	    log.Fatal(err)
	}
	provider, err := jwks.NewProvider(jwks.WithCache(cache))
	if err != nil {
	    log.Fatal(err)
	}

	c, err := core.New(
	    core.WithKeySetProvider(provider),
	    core.WithConfig(cfg),
	)
	if err != nil {
	    log.Fatal(err)
	}

	// subjectHint binds the token to the resource being accessed,
	// e.g. the profile ID from the request path.
	claims, err := c.CheckToken(ctx, token, "user-42")

# Error Handling

	claims, err := c.CheckToken(ctx, token, subject)
	if err != nil {
	    if errors.Is(err, core.ErrJWTMissing) {
	        // no token
	    }
	    if errors.Is(err, core.ErrJWTInvalid) {
	        // token presented but not accepted
	    }

	    var validationErr *core.ValidationError
	    if errors.As(err, &validationErr) {
	        switch validationErr.Code {
	        case core.ErrorCodeJWKSFetchFailed:
	            // identity provider unreachable
	        case core.ErrorCodeTokenRejected, core.ErrorCodeSubjectMissing:
	            // bad token
	        }
	    }
	}

Codes are meant for logs and metrics. Clients should get the same generic
response for all of them.

# Type-Safe Context Helpers

	ctx = core.SetClaims(ctx, claims)

	claims, err := core.GetClaims[*validator.Claims](ctx)
	if err != nil {
	    // Claims not found
	}

	if core.HasClaims(ctx) {
	    // Claims are present
	}

# Observability

WithLogger, WithMetrics and WithTracer are optional. CheckToken opens a
"CheckToken" span with "jwks.get" and "token.verify" children, and counts
every call in jwt_validations_total labelled by result.
*/
package core
