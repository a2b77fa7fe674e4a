package grpc

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userKey ctxKey = "user"

// UserFromContext returns the user attached by the access-token interceptor.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if code == codes.OK {
		s.logger.Debug(ctx, "rpc", args...)
	} else {
		s.logger.Info(ctx, "rpc", append(args, "error", status.Convert(err).Message())...)
	}
	return resp, err
}

// accessTokenInterceptor attaches the user named by a valid access token.
// Requests without a token pass through anonymously.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(s.tokenKey); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return handler(ctx, req)
	}

	user, err := s.verifier.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	return handler(context.WithValue(ctx, userKey, user), req)
}

// errorInterceptor converts apperr kinds returned by handlers to gRPC
// statuses. Errors that already carry a status pass through unchanged.
func errorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		return resp, toStatus(err)
	}
	return resp, nil
}

func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	e := apperr.From(err)
	var code codes.Code
	switch e.Kind {
	case apperr.KindConflict:
		code = codes.AlreadyExists
	case apperr.KindForbidden:
		code = codes.PermissionDenied
	case apperr.KindNotFound:
		code = codes.NotFound
	case apperr.KindUnauthorized:
		code = codes.Unauthenticated
	case apperr.KindValidation:
		code = codes.InvalidArgument
	default:
		return status.Error(codes.Internal, apperr.InternalMessage)
	}

	st := status.New(code, e.Message)
	if e.Kind != apperr.KindValidation || len(e.Details) == 0 {
		return st.Err()
	}

	fields := make([]string, 0, len(e.Details))
	for f := range e.Details {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	br := &errdetails.BadRequest{}
	for _, f := range fields {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f,
			Description: e.Details[f],
		})
	}
	withDetails, dErr := st.WithDetails(br)
	if dErr != nil {
		return st.Err()
	}
	return withDetails.Err()
}
