package grpcx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/propdesk/backoffice/libs/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestJSONCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(JSONCodecName)
	require.NotNil(t, c)

	type msg struct {
		SlotID string `json:"slot_id"`
	}
	b, err := c.Marshal(msg{SlotID: "s1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"slot_id":"s1"}`, string(b))

	var out msg
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, "s1", out.SlotID)
}

func TestClientInterceptorPrefersHTTPRequestID(t *testing.T) {
	ctx := httpx.ContextWithRequestID(context.Background(), "http-1")
	ctx = WithRequestID(ctx, "grpc-1")

	var got []string
	invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		got = md.Get(RequestIDMetadataKey)
		return nil
	}
	require.NoError(t, UnaryClientRequestIDInterceptor()(ctx, "/svc/M", nil, nil, nil, invoker))
	assert.Equal(t, []string{"http-1"}, got)
}

func TestServerInterceptorsAdoptAndLogRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "req-7"))
	info := &grpc.UnaryServerInfo{FullMethod: "/cleaning.v1.CleaningService/BookSlot"}

	logged := func(ctx context.Context, req any) (any, error) {
		return UnaryServerLogInterceptor(logger)(ctx, req, info, func(ctx context.Context, _ any) (any, error) {
			assert.Equal(t, "req-7", RequestIDFromContext(ctx))
			return nil, status.Error(codes.Aborted, "taken")
		})
	}
	_, err := UnaryServerRequestIDInterceptor()(ctx, nil, info, logged)
	assert.Equal(t, codes.Aborted, status.Code(err))
	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
	assert.Contains(t, buf.String(), `"code":"Aborted"`)
}
