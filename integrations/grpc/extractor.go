package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/profile-service/jwtauth/core"
)

// TokenExtractor extracts JWT tokens from gRPC metadata. A call without a
// usable token is an error matching core.ErrJWTMissing.
type TokenExtractor func(ctx context.Context) (string, error)

// SubjectExtractor returns the subject a call is about. req is nil for
// streams. An empty result disables the subject check.
type SubjectExtractor func(ctx context.Context, req any) string

// Extractor errors
var (
	// ErrMultipleAuthHeaders indicates multiple authorization metadata entries were provided.
	ErrMultipleAuthHeaders = errors.New("multiple authorization metadata entries are not allowed")

	// ErrInvalidAuthFormat indicates the authorization metadata is not "Bearer <token>".
	// It matches core.ErrJWTMissing.
	ErrInvalidAuthFormat = fmt.Errorf("%w: authorization metadata format must be Bearer <token>", core.ErrJWTMissing)
)

// MetadataTokenExtractor extracts JWT from the "authorization" metadata key.
//
// gRPC normalizes incoming metadata keys to lowercase, so this extractor only
// checks the lowercase "authorization" key.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", core.ErrJWTMissing
	}

	authHeaders := md.Get("authorization")
	switch len(authHeaders) {
	case 0:
		return "", core.ErrJWTMissing
	case 1:
	default:
		return "", ErrMultipleAuthHeaders
	}

	parts := strings.Fields(authHeaders[0])
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidAuthFormat
	}

	return parts[1], nil
}

// SubjectFromMetadata builds a SubjectExtractor reading the first value of
// the named metadata key.
func SubjectFromMetadata(key string) SubjectExtractor {
	return func(ctx context.Context, _ any) string {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return ""
		}
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
		return ""
	}
}
