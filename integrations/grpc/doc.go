// Package grpc provides gRPC server interceptors for JWT authentication.
//
// The interceptors read "authorization: Bearer <token>" metadata, check the
// token with core.Core and store the verified claims in the call context.
//
// # Basic Usage
//
//	import (
//	    jwtgrpc "github.com/profile-service/jwtauth/integrations/grpc"
//	    "google.golang.org/grpc"
//	)
//
//	interceptor, err := jwtgrpc.New(
//	    jwtgrpc.WithCore(c),
//	    jwtgrpc.WithSubjectExtractor(jwtgrpc.SubjectFromMetadata("x-profile-id")),
//	    jwtgrpc.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
//
// # Errors
//
// DefaultErrorHandler returns codes.Unauthenticated for missing and
// rejected tokens, codes.InvalidArgument for repeated authorization
// metadata and codes.Internal for anything else.
//
// # Claims Retrieval
//
//	func (s *server) GetProfile(ctx context.Context, req *pb.GetProfileRequest) (*pb.Profile, error) {
//	    claims, err := jwtgrpc.GetClaims(ctx)
//	    if err != nil {
//	        return nil, status.Error(codes.Internal, "failed to get claims")
//	    }
//	    return s.profiles.Get(ctx, claims.Subject)
//	}
package grpc
