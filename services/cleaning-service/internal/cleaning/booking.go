package cleaning

import (
	"context"
	"errors"
	"strings"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BookSlot claims an open slot for booker. Failures, in check order: model.ErrNotFound,
// model.ErrExpiredSlot, model.ErrAlreadyBooked. Losing a concurrent race also yields
// model.ErrAlreadyBooked because the final write is conditional on the slot being open.
func (s *Service) BookSlot(ctx context.Context, scheduleID, slotID, booker string) (model.Slot, error) {
	ctx, span := s.tracer.Start(ctx, "cleaning.BookSlot", trace.WithAttributes(
		attribute.String("schedule_id", scheduleID),
		attribute.String("slot_id", slotID),
	))
	defer span.End()

	booker = strings.TrimSpace(booker)
	if booker == "" {
		return model.Slot{}, model.Validationf("booker identity is required")
	}

	// Preconditions are read from the store, never from the cache.
	sch, err := s.store.Get(ctx, scheduleID)
	if err != nil {
		return model.Slot{}, err
	}
	slot, ok := sch.Slot(slotID)
	if !ok {
		return model.Slot{}, model.NotFoundf("slot %s not found in schedule %s", slotID, scheduleID)
	}
	now := s.now()
	if slot.IsExpired(now) {
		return model.Slot{}, model.ExpiredSlot(slotID)
	}
	if slot.IsBooked() {
		return model.Slot{}, model.AlreadyBooked()
	}

	booked, err := s.store.SetSlotBooking(ctx, scheduleID, slotID, booker, now.UTC())
	if err != nil {
		if errors.Is(err, model.ErrAlreadyBooked) {
			span.SetAttributes(attribute.Bool("lost_race", true))
		} else {
			span.SetStatus(codes.Error, err.Error())
		}
		return model.Slot{}, err
	}
	s.invalidate(ctx, sch)

	s.logger.InfoContext(ctx, "cleaning slot booked",
		"schedule_id", scheduleID,
		"slot_id", slotID,
		"booker_id", booker,
		"date", booked.Date.String(),
		"from_time", booked.FromTime.String(),
	)
	s.notify(ctx, sch, booked)
	return booked, nil
}

// notify hands the confirmation off without letting its outcome reach the booking caller.
func (s *Service) notify(ctx context.Context, sch *model.Schedule, slot model.Slot) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.SlotBooked(ctx, sch, slot); err != nil {
		s.logger.ErrorContext(ctx, "booking confirmation hand-off failed",
			"schedule_id", sch.ID,
			"slot_id", slot.ID,
			"err", err,
		)
	}
}
