package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/TomasB/geoip2-server/internal/data"
	"github.com/TomasB/geoip2-server/internal/data/datatest"
	geoipgrpc "github.com/TomasB/geoip2-server/internal/handler/grpc"
	"github.com/TomasB/geoip2-server/internal/lookup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func startGRPC(t *testing.T, resolver *lookup.Resolver) (*GRPCServer, *grpc.ClientConn, *bytes.Buffer) {
	t.Helper()

	logs := &bytes.Buffer{}
	s := NewGRPCServer(resolver, slog.New(slog.NewJSONHandler(logs, nil)))

	listener := bufconn.Listen(1024 * 1024)
	done := make(chan error, 1)
	go func() { done <- s.Serve(listener) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		s.GracefulStop()
		<-done
		listener.Close()
	})

	return s, conn, logs
}

func TestGRPCLookups(t *testing.T) {
	_, conn, logs := startGRPC(t, openResolver(t))
	ctx := context.Background()

	out := &structpb.Struct{}
	require.NoError(t, conn.Invoke(ctx, geoipgrpc.CityMethod, wrapperspb.String(datatest.USAddress), out))

	country := out.GetFields()["country"].GetStructValue()
	require.NotNil(t, country)
	assert.Equal(t, "US", country.GetFields()["iso_code"].GetStringValue())
	assert.Contains(t, out.GetFields(), "city")

	out = &structpb.Struct{}
	require.NoError(t, conn.Invoke(ctx, geoipgrpc.CountryMethod, wrapperspb.String(datatest.JPAddress), out))
	assert.NotContains(t, out.GetFields(), "city")

	err := conn.Invoke(ctx, geoipgrpc.CountryMethod, wrapperspb.String(datatest.AbsentAddress), &structpb.Struct{})
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = conn.Invoke(ctx, geoipgrpc.CityMethod, wrapperspb.String("not-an-ip"), &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	assert.Contains(t, logs.String(), `"method":"`+geoipgrpc.CityMethod+`"`)
}

func TestGRPCServing(t *testing.T) {
	s, _, _ := startGRPC(t, openResolver(t))

	assert.Eventually(t, s.Serving, time.Second, 10*time.Millisecond)
}

func TestGRPCHealth(t *testing.T) {
	s, conn, _ := startGRPC(t, openResolver(t))
	client := healthpb.NewHealthClient(conn)
	ctx := context.Background()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: geoipgrpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	s.SetNotServing()

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

type panickingLookup struct{}

func (panickingLookup) City(net.IP) (*data.CityRecord, error) {
	panic("corrupt node")
}

func (panickingLookup) Country(net.IP) (*data.CountryRecord, error) {
	panic("corrupt node")
}

func (panickingLookup) Close() error {
	return nil
}

func TestGRPCRecovery(t *testing.T) {
	_, conn, logs := startGRPC(t, lookup.NewResolver(panickingLookup{}))

	err := conn.Invoke(context.Background(), geoipgrpc.CityMethod, wrapperspb.String(datatest.USAddress), &structpb.Struct{})

	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.NotContains(t, status.Convert(err).Message(), "corrupt node")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "rpc completed with errors", entry["msg"])
	assert.Contains(t, entry["errors"], "panic: corrupt node")
}
