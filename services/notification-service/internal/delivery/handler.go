// Package delivery turns booking-confirmed events into resident messages.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/propdesk/backoffice/libs/kafkax"
	"github.com/propdesk/backoffice/services/notification-service/internal/messaging"
	"github.com/propdesk/backoffice/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
)

// SlotBooked mirrors the cleaning.slot.booked.v1 payload.
type SlotBooked struct {
	ScheduleID string    `json:"schedule_id"`
	SlotID     string    `json:"slot_id"`
	BuildingID string    `json:"building_id"`
	BookerID   string    `json:"booker_id"`
	Date       string    `json:"date"`
	FromTime   string    `json:"from_time"`
	ToTime     string    `json:"to_time"`
	BookedAt   time.Time `json:"booked_at"`
}

type Recorder interface {
	Insert(ctx context.Context, d storage.Delivery) error
}

type Handler struct {
	sender   messaging.Sender
	recorder Recorder
	logger   *slog.Logger
	timeout  time.Duration
}

func NewHandler(sender messaging.Sender, recorder Recorder, logger *slog.Logger, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{sender: sender, recorder: recorder, logger: logger, timeout: timeout}
}

func Body(evt SlotBooked) string {
	return fmt.Sprintf("Your cleaning is booked for %s, %s-%s. Ref %s.", evt.Date, evt.FromTime, evt.ToTime, shortRef(evt.SlotID))
}

func shortRef(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Handle sends one confirmation and records the attempt. Malformed events are dropped; only a
// failure to record the attempt is returned.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var evt SlotBooked
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger.ErrorContext(ctx, "invalid slot booked payload", "err", err, "topic", msg.Topic)
		return nil
	}
	if evt.ScheduleID == "" || evt.SlotID == "" || strings.TrimSpace(evt.BookerID) == "" {
		h.logger.ErrorContext(ctx, "missing slot booked fields", "topic", msg.Topic)
		return nil
	}

	d := storage.Delivery{
		EventID:    kafkax.ExtractEventMeta(msg).EventID,
		ScheduleID: evt.ScheduleID,
		SlotID:     evt.SlotID,
		BuildingID: evt.BuildingID,
		Recipient:  strings.TrimSpace(evt.BookerID),
		Provider:   h.sender.ProviderID(),
		Body:       Body(evt),
		Status:     storage.StatusSent,
	}

	sendCtx, cancel := context.WithTimeout(ctx, h.timeout)
	err := h.sender.Send(sendCtx, messaging.Message{To: d.Recipient, Body: d.Body, Reference: evt.ScheduleID + "/" + evt.SlotID})
	cancel()
	if err != nil {
		d.Status = storage.StatusFailed
		d.Error = err.Error()
		h.logger.ErrorContext(ctx, "confirmation send failed", "err", err, "slot_id", evt.SlotID, "provider", d.Provider)
	}

	if err := h.recorder.Insert(ctx, d); err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	h.logger.InfoContext(ctx, "confirmation processed", "slot_id", evt.SlotID, "status", d.Status, "provider", d.Provider)
	return nil
}
