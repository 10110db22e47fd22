package model

import (
	"time"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
)

// TimeRange is a half-open wall-clock window [Start, End) partitioned into slots.
type TimeRange struct {
	Start calendar.Clock `json:"start"`
	End   calendar.Clock `json:"end"`
}

// Minutes is the length of the range.
func (r TimeRange) Minutes() int { return int(r.End - r.Start) }

// Slot is one reservable window on one date. BookedBy is empty while the slot is open.
type Slot struct {
	ID       string         `json:"id"`
	Date     calendar.Date  `json:"date"`
	FromTime calendar.Clock `json:"from_time"`
	ToTime   calendar.Clock `json:"to_time"`
	BookedBy string         `json:"booked_by,omitempty"`
	BookedAt *time.Time     `json:"booked_at,omitempty"`
}

func (s Slot) IsBooked() bool { return s.BookedBy != "" }

// IsExpired is true for slots on a past day and for today's slots whose start has elapsed.
func (s Slot) IsExpired(now time.Time) bool {
	if calendar.IsPastDay(s.Date, now) {
		return true
	}
	return calendar.IsToday(s.Date, now) && calendar.IsPastTimeOfDay(s.Date, s.FromTime, now)
}

// IsOpen reports whether the slot can still be booked at now.
func (s Slot) IsOpen(now time.Time) bool {
	return !s.IsBooked() && !s.IsExpired(now)
}

// Schedule is the cleaning plan of one building for one month.
type Schedule struct {
	ID           string         `json:"id"`
	BuildingID   string         `json:"building_id"`
	Month        calendar.Month `json:"month"`
	SelectedDays []int          `json:"selected_days"`
	TimeRanges   []TimeRange    `json:"time_ranges"`
	SlotDuration int            `json:"slot_duration"`
	Slots        []Slot         `json:"slots"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Slot finds a slot by id.
func (s *Schedule) Slot(id string) (Slot, bool) {
	for _, slot := range s.Slots {
		if slot.ID == id {
			return slot, true
		}
	}
	return Slot{}, false
}

// SlotsOn returns the slots for date in stored order.
func (s *Schedule) SlotsOn(date calendar.Date) []Slot {
	var out []Slot
	for _, slot := range s.Slots {
		if slot.Date == date {
			out = append(out, slot)
		}
	}
	return out
}

// Clone returns a deep copy so callers can mutate without touching a cached or stored value.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	c := *s
	c.SelectedDays = append([]int(nil), s.SelectedDays...)
	c.TimeRanges = append([]TimeRange(nil), s.TimeRanges...)
	c.Slots = make([]Slot, len(s.Slots))
	for i, slot := range s.Slots {
		if slot.BookedAt != nil {
			at := *slot.BookedAt
			slot.BookedAt = &at
		}
		c.Slots[i] = slot
	}
	return &c
}
