package directory

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/propdesk/backoffice/libs/grpcx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeDirectory struct {
	buildings map[string]bool
}

func getBuildingHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	var req GetBuildingRequest
	if err := dec(&req); err != nil {
		return nil, err
	}
	active, ok := srv.(*fakeDirectory).buildings[req.BuildingID]
	if !ok {
		return nil, status.Error(codes.NotFound, "unknown building")
	}
	return &GetBuildingResponse{BuildingID: req.BuildingID, Active: active}, nil
}

func startDirectory(t *testing.T, d *fakeDirectory) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 16)
	srv := grpcx.NewServer()
	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "directory.v1.DirectoryService",
		HandlerType: (*any)(nil),
		Methods:     []grpc.MethodDesc{{MethodName: "GetBuilding", Handler: getBuildingHandler}},
	}, d)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpcx.Dial("passthrough:///bufnet", grpcx.DialOptions{JSON: true},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestClientBuildingExists(t *testing.T) {
	conn := startDirectory(t, &fakeDirectory{buildings: map[string]bool{"b-1": true, "b-old": false}})
	c := NewClient(conn, time.Second)
	ctx := context.Background()

	ok, err := c.BuildingExists(ctx, "b-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.BuildingExists(ctx, "b-old")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.BuildingExists(ctx, "b-missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenAcceptsAll(t *testing.T) {
	ok, err := Open{}.BuildingExists(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)
}
