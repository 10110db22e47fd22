// Package availability computes the read-side projections of a schedule. Every function is pure
// over a schedule snapshot and an explicit now.
package availability

import (
	"sort"
	"time"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
)

// DaysWithOpenSlots returns, ascending, the dates in month with at least one unbooked slot
// that has not started yet.
func DaysWithOpenSlots(s *model.Schedule, month calendar.Month, now time.Time) []calendar.Date {
	seen := map[calendar.Date]bool{}
	var days []calendar.Date
	for _, slot := range s.Slots {
		if slot.Date.MonthOf() != month || seen[slot.Date] || !slot.IsOpen(now) {
			continue
		}
		seen[slot.Date] = true
		days = append(days, slot.Date)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Compare(days[j]) < 0 })
	return days
}

// OpenSlotsForDate returns the bookable slots of one day ordered by start time.
func OpenSlotsForDate(s *model.Schedule, date calendar.Date, now time.Time) []model.Slot {
	out := []model.Slot{}
	for _, slot := range s.Slots {
		if slot.Date == date && slot.IsOpen(now) {
			out = append(out, slot)
		}
	}
	sortByStart(out)
	return out
}

// AllSlotsForDate returns booked and unbooked slots of one day for management views.
func AllSlotsForDate(s *model.Schedule, date calendar.Date) []model.Slot {
	out := append([]model.Slot{}, s.SlotsOn(date)...)
	sortByStart(out)
	return out
}

// SlotsBookedBy returns the slots claimed by booker, ordered by date and start.
func SlotsBookedBy(s *model.Schedule, booker string) []model.Slot {
	out := []model.Slot{}
	if booker == "" {
		return out
	}
	for _, slot := range s.Slots {
		if slot.BookedBy == booker {
			out = append(out, slot)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		return out[i].FromTime < out[j].FromTime
	})
	return out
}

type DayView struct {
	Date     calendar.Date `json:"date"`
	Day      int           `json:"day"`
	Selected bool          `json:"selected"`
	Past     bool          `json:"past"`
	Open     int           `json:"open"`
	Booked   int           `json:"booked"`
	Expired  int           `json:"expired"`
}

// MonthView is the management calendar grid. LeadingBlanks is the number of empty cells before
// the 1st when weeks start on Sunday.
type MonthView struct {
	Month         calendar.Month `json:"month"`
	LeadingBlanks int            `json:"leading_blanks"`
	Days          []DayView      `json:"days"`
}

func BuildMonthView(s *model.Schedule, now time.Time) MonthView {
	month := s.Month
	selected := make(map[int]bool, len(s.SelectedDays))
	for _, d := range s.SelectedDays {
		selected[d] = true
	}

	days := make([]DayView, month.Days())
	for i := range days {
		date := month.Day(i + 1)
		days[i] = DayView{
			Date:     date,
			Day:      i + 1,
			Selected: selected[i+1],
			Past:     calendar.IsPastDay(date, now),
		}
	}
	for _, slot := range s.Slots {
		if slot.Date.MonthOf() != month || !month.HasDay(slot.Date.Day) {
			continue
		}
		dv := &days[slot.Date.Day-1]
		switch {
		case slot.IsBooked():
			dv.Booked++
		case slot.IsExpired(now):
			dv.Expired++
		default:
			dv.Open++
		}
	}

	return MonthView{
		Month:         month,
		LeadingBlanks: calendar.MonthStartWeekdayOffset(month),
		Days:          days,
	}
}

func sortByStart(slots []model.Slot) {
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].FromTime < slots[j].FromTime })
}
