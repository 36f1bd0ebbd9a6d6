package grpc

import (
	"context"
	"errors"

	"github.com/TomasB/geoip2-server/internal/apierror"
	"github.com/TomasB/geoip2-server/internal/lookup"
	"github.com/goccy/go-json"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrorDomain is the ErrorInfo domain attached to every lookup error.
const ErrorDomain = "geoip"

// Handler implements GeoIPServer.
type Handler struct {
	resolver *lookup.Resolver
}

// NewHandler creates a new gRPC handler with the given Resolver.
func NewHandler(resolver *lookup.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// City returns the city record for the address in req.
func (h *Handler) City(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, Status(apierror.IPAddressRequired)
	}

	record, err := h.resolver.City(req.GetValue())
	if err != nil {
		return nil, Status(err)
	}
	return toStruct(record)
}

// Country returns the country record for the address in req.
func (h *Handler) Country(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, Status(apierror.IPAddressRequired)
	}

	record, err := h.resolver.Country(req.GetValue())
	if err != nil {
		return nil, Status(err)
	}
	return toStruct(record)
}

// toStruct goes through JSON so the message carries exactly the HTTP body.
func toStruct(record any) (*structpb.Struct, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, Status(apierror.New(apierror.IPAddressNotFound, err))
	}

	s := &structpb.Struct{}
	if err := protojson.Unmarshal(body, s); err != nil {
		return nil, Status(apierror.New(apierror.IPAddressNotFound, err))
	}
	return s, nil
}

// Status converts err into a gRPC status error carrying the taxonomy code in
// an ErrorInfo detail. Internal causes stay on the returned error, see Cause.
func Status(err error) error {
	kind := apierror.KindOf(err)

	var (
		apiErr *apierror.Error
		cause  error
	)
	switch {
	case errors.As(err, &apiErr):
		cause = apiErr.Unwrap()
	case errors.As(err, new(apierror.Kind)):
	default:
		cause = err
	}

	st := status.New(kind.GRPCCode(), kind.Message())
	if detailed, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: kind.Code(),
		Domain: ErrorDomain,
	}); derr == nil {
		st = detailed
	}

	return &statusError{st: st, cause: cause}
}

// Cause returns the internal failure behind an error built by Status, or nil.
// It is never sent to the client.
func Cause(err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return se.cause
	}
	return nil
}

type statusError struct {
	st    *status.Status
	cause error
}

func (e *statusError) Error() string {
	return e.st.Err().Error()
}

func (e *statusError) GRPCStatus() *status.Status {
	return e.st
}
