package cleaning

import (
	"context"
	"slices"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/slotgen"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DayDiff splits a selection change into added, removed and unchanged days. Inputs must be
// normalized; outputs are ascending.
type DayDiff struct {
	Added     []int
	Removed   []int
	Unchanged []int
}

func DiffDays(current, next []int) DayDiff {
	var d DayDiff
	for _, day := range next {
		if slices.Contains(current, day) {
			d.Unchanged = append(d.Unchanged, day)
		} else {
			d.Added = append(d.Added, day)
		}
	}
	for _, day := range current {
		if !slices.Contains(next, day) {
			d.Removed = append(d.Removed, day)
		}
	}
	return d
}

// UpdateSelectedDays changes the day selection. Removing a day that still has a booked slot
// fails with model.ErrDaysWithBookings naming every such day; otherwise slots of unchanged days
// are kept exactly as stored and slots for added days are generated.
func (s *Service) UpdateSelectedDays(ctx context.Context, scheduleID string, selectedDays []int) (*model.Schedule, error) {
	ctx, span := s.tracer.Start(ctx, "cleaning.UpdateSelectedDays", trace.WithAttributes(
		attribute.String("schedule_id", scheduleID),
	))
	defer span.End()

	days, err := slotgen.NormalizeDays(selectedDays)
	if err != nil {
		return nil, err
	}
	sch, err := s.store.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	diff := DiffDays(sch.SelectedDays, days)
	removed := make(map[int]bool, len(diff.Removed))
	for _, day := range diff.Removed {
		removed[day] = true
	}

	var conflicts []int
	for _, day := range diff.Removed {
		if !sch.Month.HasDay(day) {
			continue
		}
		for _, slot := range sch.SlotsOn(sch.Month.Day(day)) {
			if slot.IsBooked() {
				conflicts = append(conflicts, day)
				break
			}
		}
	}
	if len(conflicts) > 0 {
		s.logger.InfoContext(ctx, "day removal rejected", "schedule_id", scheduleID, "days", conflicts)
		return nil, model.DaysWithBookings(conflicts)
	}

	added, err := slotgen.Generate(slotgen.Input{
		Month:        sch.Month,
		SelectedDays: diff.Added,
		TimeRanges:   sch.TimeRanges,
		SlotDuration: sch.SlotDuration,
	})
	if err != nil {
		return nil, err
	}

	next := make([]model.Slot, 0, len(sch.Slots)+len(added))
	for _, slot := range sch.Slots {
		if !removed[slot.Date.Day] {
			next = append(next, slot)
		}
	}
	next = append(next, added...)
	slotgen.Sort(next)

	updated, err := s.store.ReplaceSlots(ctx, storage.Replacement{
		ScheduleID:   sch.ID,
		SelectedDays: days,
		TimeRanges:   sch.TimeRanges,
		SlotDuration: sch.SlotDuration,
		Slots:        next,
		UpdatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sch)

	s.logger.InfoContext(ctx, "cleaning days updated",
		"schedule_id", sch.ID,
		"added", diff.Added,
		"removed", diff.Removed,
	)
	return updated, nil
}

// ReplaceTimetable swaps the time ranges and slot duration. Slots whose date and window are
// still produced by the new timetable are kept as stored; a booked slot that would vanish fails
// the whole change with model.ErrDaysWithBookings.
func (s *Service) ReplaceTimetable(ctx context.Context, scheduleID string, ranges []model.TimeRange, slotDuration int) (*model.Schedule, error) {
	ctx, span := s.tracer.Start(ctx, "cleaning.ReplaceTimetable", trace.WithAttributes(
		attribute.String("schedule_id", scheduleID),
	))
	defer span.End()

	normalized, err := slotgen.NormalizeTimetable(ranges, slotDuration)
	if err != nil {
		return nil, err
	}
	sch, err := s.store.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	desired, err := slotgen.Generate(slotgen.Input{
		Month:        sch.Month,
		SelectedDays: sch.SelectedDays,
		TimeRanges:   normalized,
		SlotDuration: slotDuration,
	})
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(desired))
	for _, slot := range desired {
		wanted[slot.ID] = true
	}
	stored := make(map[string]model.Slot, len(sch.Slots))
	var conflicts []int
	for _, slot := range sch.Slots {
		stored[slot.ID] = slot
		if slot.IsBooked() && !wanted[slot.ID] && !slices.Contains(conflicts, slot.Date.Day) {
			conflicts = append(conflicts, slot.Date.Day)
		}
	}
	if len(conflicts) > 0 {
		slices.Sort(conflicts)
		s.logger.InfoContext(ctx, "timetable change rejected", "schedule_id", scheduleID, "days", conflicts)
		return nil, model.DaysWithBookings(conflicts)
	}

	next := make([]model.Slot, len(desired))
	for i, slot := range desired {
		if cur, ok := stored[slot.ID]; ok {
			slot = cur
		}
		next[i] = slot
	}

	updated, err := s.store.ReplaceSlots(ctx, storage.Replacement{
		ScheduleID:   sch.ID,
		SelectedDays: sch.SelectedDays,
		TimeRanges:   normalized,
		SlotDuration: slotDuration,
		Slots:        next,
		UpdatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sch)

	s.logger.InfoContext(ctx, "cleaning timetable replaced",
		"schedule_id", sch.ID,
		"slot_duration", slotDuration,
		"slots", len(updated.Slots),
	)
	return updated, nil
}
