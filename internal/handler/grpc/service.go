package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "geoip.v21.GeoIP"

// Full method names.
const (
	CityMethod    = "/" + ServiceName + "/City"
	CountryMethod = "/" + ServiceName + "/Country"
)

// GeoIPServer is the server API for the GeoIP service. Requests carry the
// address as a google.protobuf.StringValue and responses are the record as a
// google.protobuf.Struct.
type GeoIPServer interface {
	City(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Country(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterGeoIPServer registers srv with s.
func RegisterGeoIPServer(s grpc.ServiceRegistrar, srv GeoIPServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GeoIPServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "City", Handler: cityHandler},
		{MethodName: "Country", Handler: countryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "geoip/v21/geoip.proto",
}

func cityHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GeoIPServer).City(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CityMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GeoIPServer).City(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func countryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GeoIPServer).Country(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CountryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GeoIPServer).Country(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
