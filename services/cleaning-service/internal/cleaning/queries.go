package cleaning

import (
	"context"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/availability"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
)

// DayAvailability is the tenant calendar for one building and month.
type DayAvailability struct {
	ScheduleID        string          `json:"schedule_id"`
	Month             calendar.Month  `json:"month"`
	LeadingBlanks     int             `json:"leading_blanks"`
	DaysWithOpenSlots []calendar.Date `json:"days_with_open_slots"`
}

// DateSlots is a list of slots for a single date of a schedule.
type DateSlots struct {
	ScheduleID string        `json:"schedule_id"`
	Date       calendar.Date `json:"date"`
	Slots      []model.Slot  `json:"slots"`
}

func (s *Service) DaysWithOpenSlots(ctx context.Context, buildingID string, month calendar.Month) (DayAvailability, error) {
	sch, err := s.FindSchedule(ctx, buildingID, month)
	if err != nil {
		return DayAvailability{}, err
	}
	days := availability.DaysWithOpenSlots(sch, month, s.now())
	if days == nil {
		days = []calendar.Date{}
	}
	return DayAvailability{
		ScheduleID:        sch.ID,
		Month:             month,
		LeadingBlanks:     calendar.MonthStartWeekdayOffset(month),
		DaysWithOpenSlots: days,
	}, nil
}

// OpenSlotsOn resolves the building's schedule for the date's month and lists bookable slots.
func (s *Service) OpenSlotsOn(ctx context.Context, buildingID string, date calendar.Date) (DateSlots, error) {
	sch, err := s.FindSchedule(ctx, buildingID, date.MonthOf())
	if err != nil {
		return DateSlots{}, err
	}
	return DateSlots{ScheduleID: sch.ID, Date: date, Slots: availability.OpenSlotsForDate(sch, date, s.now())}, nil
}

func (s *Service) OpenSlotsForDate(ctx context.Context, scheduleID string, date calendar.Date) (DateSlots, error) {
	sch, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return DateSlots{}, err
	}
	return DateSlots{ScheduleID: sch.ID, Date: date, Slots: availability.OpenSlotsForDate(sch, date, s.now())}, nil
}

func (s *Service) AllSlotsForDate(ctx context.Context, scheduleID string, date calendar.Date) (DateSlots, error) {
	sch, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return DateSlots{}, err
	}
	return DateSlots{ScheduleID: sch.ID, Date: date, Slots: availability.AllSlotsForDate(sch, date)}, nil
}

func (s *Service) MonthView(ctx context.Context, scheduleID string) (availability.MonthView, error) {
	sch, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return availability.MonthView{}, err
	}
	return availability.BuildMonthView(sch, s.now()), nil
}

func (s *Service) SlotsBookedBy(ctx context.Context, scheduleID, booker string) ([]model.Slot, error) {
	sch, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return availability.SlotsBookedBy(sch, booker), nil
}
