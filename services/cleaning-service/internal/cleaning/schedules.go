package cleaning

import (
	"context"
	"fmt"
	"strings"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/cache"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/slotgen"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type CreateScheduleInput struct {
	BuildingID   string
	Month        calendar.Month
	SelectedDays []int
	TimeRanges   []model.TimeRange
	SlotDuration int
}

// CreateSchedule materializes the slots of a new (building, month) schedule.
func (s *Service) CreateSchedule(ctx context.Context, in CreateScheduleInput) (*model.Schedule, error) {
	ctx, span := s.tracer.Start(ctx, "cleaning.CreateSchedule", trace.WithAttributes(
		attribute.String("building_id", in.BuildingID),
		attribute.String("month", in.Month.String()),
	))
	defer span.End()

	buildingID := strings.TrimSpace(in.BuildingID)
	if buildingID == "" {
		return nil, model.Validationf("building id is required")
	}
	if in.Month.IsZero() {
		return nil, model.Validationf("month is required")
	}
	days, err := slotgen.NormalizeDays(in.SelectedDays)
	if err != nil {
		return nil, err
	}
	ranges, err := slotgen.NormalizeTimetable(in.TimeRanges, in.SlotDuration)
	if err != nil {
		return nil, err
	}

	ok, err := s.directory.BuildingExists(ctx, buildingID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("verify building: %w", err)
	}
	if !ok {
		return nil, model.NotFoundf("building %s not found", buildingID)
	}

	slots, err := slotgen.Generate(slotgen.Input{Month: in.Month, SelectedDays: days, TimeRanges: ranges, SlotDuration: in.SlotDuration})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sch := &model.Schedule{
		ID:           s.newID(),
		BuildingID:   buildingID,
		Month:        in.Month,
		SelectedDays: days,
		TimeRanges:   ranges,
		SlotDuration: in.SlotDuration,
		Slots:        slots,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, sch); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, cache.ByBuildingMonth(sch.BuildingID, sch.Month))

	s.logger.InfoContext(ctx, "cleaning schedule created",
		"schedule_id", sch.ID,
		"building_id", sch.BuildingID,
		"month", sch.Month.String(),
		"slots", len(sch.Slots),
	)
	return sch, nil
}

// GetSchedule reads through the cache.
func (s *Service) GetSchedule(ctx context.Context, scheduleID string) (*model.Schedule, error) {
	key := cache.ByID(scheduleID)
	if sch, ok := s.cache.Get(ctx, key); ok {
		return sch, nil
	}
	sch, err := s.store.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, sch)
	return sch, nil
}

// FindSchedule returns the schedule of a building for a month.
func (s *Service) FindSchedule(ctx context.Context, buildingID string, month calendar.Month) (*model.Schedule, error) {
	key := cache.ByBuildingMonth(buildingID, month)
	if sch, ok := s.cache.Get(ctx, key); ok {
		return sch, nil
	}
	sch, err := s.store.GetByBuildingMonth(ctx, buildingID, month)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, sch)
	return sch, nil
}

func (s *Service) ListSchedules(ctx context.Context, buildingID string) ([]*model.Schedule, error) {
	if strings.TrimSpace(buildingID) == "" {
		return nil, model.Validationf("building id is required")
	}
	return s.store.ListByBuilding(ctx, buildingID)
}
