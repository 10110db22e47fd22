package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/propdesk/backoffice/libs/kafkax"
	"github.com/propdesk/backoffice/services/notification-service/internal/messaging"
	"github.com/propdesk/backoffice/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	err  error
	to   string
	body string
	ref  string
}

func (f *fakeSender) Send(_ context.Context, m messaging.Message) error {
	f.to, f.body, f.ref = m.To, m.Body, m.Reference
	return f.err
}

func (f *fakeSender) ProviderID() string { return "fake" }

type memRecorder struct {
	err        error
	deliveries []storage.Delivery
}

func (m *memRecorder) Insert(_ context.Context, d storage.Delivery) error {
	if m.err != nil {
		return m.err
	}
	m.deliveries = append(m.deliveries, d)
	return nil
}

func message(t *testing.T, evt SlotBooked) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafka.Message{
		Topic:   "cleaning.slot.booked.v1",
		Value:   raw,
		Headers: []kafka.Header{{Key: kafkax.HeaderEventID, Value: []byte("evt-1")}},
	}
}

var booked = SlotBooked{
	ScheduleID: "sched-1",
	SlotID:     "0f8c2a52-1111-2222-3333-444455556666",
	BuildingID: "bldg-1",
	BookerID:   "tenant-1",
	Date:       "2024-03-01",
	FromTime:   "09:00",
	ToTime:     "10:00",
	BookedAt:   time.Date(2024, 2, 20, 1, 0, 0, 0, time.UTC),
}

func newHandler(s *fakeSender, r *memRecorder) *Handler {
	return NewHandler(s, r, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
}

func TestHandleSendsAndRecords(t *testing.T) {
	s, r := &fakeSender{}, &memRecorder{}
	require.NoError(t, newHandler(s, r).Handle(context.Background(), message(t, booked)))

	assert.Equal(t, "tenant-1", s.to)
	assert.Equal(t, "Your cleaning is booked for 2024-03-01, 09:00-10:00. Ref 0f8c2a52.", s.body)
	assert.Equal(t, "sched-1/0f8c2a52-1111-2222-3333-444455556666", s.ref)
	require.Len(t, r.deliveries, 1)
	d := r.deliveries[0]
	assert.Equal(t, "evt-1", d.EventID)
	assert.Equal(t, storage.StatusSent, d.Status)
	assert.Equal(t, "fake", d.Provider)
	assert.Empty(t, d.Error)
}

func TestHandleRecordsSendFailure(t *testing.T) {
	s, r := &fakeSender{err: errors.New("provider down")}, &memRecorder{}
	require.NoError(t, newHandler(s, r).Handle(context.Background(), message(t, booked)))

	require.Len(t, r.deliveries, 1)
	assert.Equal(t, storage.StatusFailed, r.deliveries[0].Status)
	assert.Equal(t, "provider down", r.deliveries[0].Error)
}

func TestHandleDropsMalformedEvents(t *testing.T) {
	s, r := &fakeSender{}, &memRecorder{}
	h := newHandler(s, r)

	require.NoError(t, h.Handle(context.Background(), kafka.Message{Value: []byte("{")}))
	missing := booked
	missing.BookerID = " "
	require.NoError(t, h.Handle(context.Background(), message(t, missing)))
	assert.Empty(t, r.deliveries)
	assert.Empty(t, s.to)
}

func TestHandleReturnsRecordError(t *testing.T) {
	r := &memRecorder{err: errors.New("db down")}
	err := newHandler(&fakeSender{}, r).Handle(context.Background(), message(t, booked))
	assert.Error(t, err)
}
