package grpcserver

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/propdesk/backoffice/libs/grpcx"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/cleaning"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func start(t *testing.T) (*grpc.ClientConn, *model.Schedule) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2024, 2, 20, 8, 0, 0, 0, calendar.Zone)
	svc := cleaning.NewService(storage.NewMemoryStore(), cleaning.Options{
		Logger: logger,
		Now:    func() time.Time { return now },
	})
	sch, err := svc.CreateSchedule(context.Background(), cleaning.CreateScheduleInput{
		BuildingID:   "bldg-1",
		Month:        calendar.Month{Year: 2024, Month: time.March},
		SelectedDays: []int{1},
		TimeRanges:   []model.TimeRange{{Start: 9 * 60, End: 11 * 60}},
		SlotDuration: 60,
	})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 16)
	srv := grpcx.NewServer()
	Register(srv, New(svc, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpcx.Dial("passthrough:///bufnet", grpcx.DialOptions{JSON: true},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, sch
}

func TestBookSlotOverGRPC(t *testing.T) {
	conn, sch := start(t)
	ctx := context.Background()

	var res BookSlotResponse
	err := conn.Invoke(ctx, BookSlotMethod, &BookSlotRequest{ScheduleID: sch.ID, SlotID: sch.Slots[0].ID, BookerID: "tenant-1"}, &res)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", res.Slot.BookedBy)

	err = conn.Invoke(ctx, BookSlotMethod, &BookSlotRequest{ScheduleID: sch.ID, SlotID: sch.Slots[0].ID, BookerID: "tenant-2"}, &res)
	assert.Equal(t, codes.Aborted, status.Code(err))

	err = conn.Invoke(ctx, BookSlotMethod, &BookSlotRequest{ScheduleID: sch.ID, SlotID: "nope", BookerID: "tenant-2"}, &res)
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = conn.Invoke(ctx, BookSlotMethod, &BookSlotRequest{ScheduleID: sch.ID}, &res)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListOpenSlotsOverGRPC(t *testing.T) {
	conn, sch := start(t)
	ctx := context.Background()

	var res ListOpenSlotsResponse
	require.NoError(t, conn.Invoke(ctx, ListOpenSlotsMethod, &ListOpenSlotsRequest{ScheduleID: sch.ID, Date: "2024-03-01"}, &res))
	require.Len(t, res.Slots, 2)
	assert.Equal(t, "09:00", res.Slots[0].FromTime.String())

	err := conn.Invoke(ctx, ListOpenSlotsMethod, &ListOpenSlotsRequest{ScheduleID: sch.ID, Date: "03/01"}, &res)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
