// Package storage persists schedule aggregates. Booking and editing use separate write paths:
// SetSlotBooking touches one slot's booking fields, ReplaceSlots touches the slot collection.
package storage

import (
	"context"
	"sort"
	"time"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
)

type Store interface {
	// Create fails with model.ErrConflict when the building already has a schedule for the month.
	Create(ctx context.Context, s *model.Schedule) error
	Get(ctx context.Context, scheduleID string) (*model.Schedule, error)
	GetByBuildingMonth(ctx context.Context, buildingID string, month calendar.Month) (*model.Schedule, error)
	// ListByBuilding returns the building's schedules, newest month first.
	ListByBuilding(ctx context.Context, buildingID string) ([]*model.Schedule, error)
	// ReplaceSlots applies an edit as one unit. See Replacement.
	ReplaceSlots(ctx context.Context, r Replacement) (*model.Schedule, error)
	// SetSlotBooking claims an open slot with a single conditional write. It returns
	// model.ErrAlreadyBooked when the slot is taken, including by a concurrent caller.
	SetSlotBooking(ctx context.Context, scheduleID, slotID, bookedBy string, bookedAt time.Time) (model.Slot, error)
}

// Replacement is the desired shape of a schedule after an edit. Slots already stored under the
// same id are left untouched, so their bookings survive; stored slots missing from Slots are
// deleted. If any slot to be deleted is booked at commit time the whole replacement fails with
// model.ErrDaysWithBookings.
type Replacement struct {
	ScheduleID   string
	SelectedDays []int
	TimeRanges   []model.TimeRange
	SlotDuration int
	Slots        []model.Slot
	UpdatedAt    time.Time
}

// bookedDaysOf returns the ascending unique days of the booked slots among removed.
func bookedDaysOf(removed []model.Slot) []int {
	seen := map[int]bool{}
	var days []int
	for _, s := range removed {
		if s.IsBooked() && !seen[s.Date.Day] {
			seen[s.Date.Day] = true
			days = append(days, s.Date.Day)
		}
	}
	sort.Ints(days)
	return days
}
