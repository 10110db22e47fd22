package outbox

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk/backoffice/libs/db"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
)

// Notifier hands booking confirmations to the messaging collaborator through the outbox.
type Notifier struct {
	pool *db.Pool
	repo *Repository
}

func NewNotifier(pool *db.Pool, repo *Repository) *Notifier {
	return &Notifier{pool: pool, repo: repo}
}

func (n *Notifier) SlotBooked(ctx context.Context, s *model.Schedule, slot model.Slot) error {
	payload, err := json.Marshal(NewSlotBookedPayload(s, slot))
	if err != nil {
		return err
	}
	return n.pool.InTx(ctx, func(tx pgx.Tx) error {
		return n.repo.Insert(ctx, tx, Event{
			AggregateType: AggregateSchedule,
			AggregateID:   s.ID,
			EventType:     TopicSlotBooked,
			Payload:       payload,
		})
	})
}

func NewSlotBookedPayload(s *model.Schedule, slot model.Slot) SlotBookedPayload {
	p := SlotBookedPayload{
		ScheduleID: s.ID,
		SlotID:     slot.ID,
		BuildingID: s.BuildingID,
		BookerID:   slot.BookedBy,
		Date:       slot.Date.String(),
		FromTime:   slot.FromTime.String(),
		ToTime:     slot.ToTime.String(),
	}
	if slot.BookedAt != nil {
		p.BookedAt = slot.BookedAt.UTC()
	}
	return p
}

// LogNotifier only logs confirmations. Used with the in-memory backend, which has no outbox.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SlotBooked(ctx context.Context, s *model.Schedule, slot model.Slot) error {
	n.logger.InfoContext(ctx, "booking confirmed (not relayed)",
		"schedule_id", s.ID,
		"slot_id", slot.ID,
		"booker_id", slot.BookedBy,
		"date", slot.Date.String(),
	)
	return nil
}
