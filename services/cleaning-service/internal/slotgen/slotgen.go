// Package slotgen expands a day selection and a timetable into dated slots.
package slotgen

import (
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
)

const (
	MinDay = 1
	MaxDay = 31
)

var slotNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("propdesk.cleaning.slot"))

type Input struct {
	Month        calendar.Month
	SelectedDays []int
	TimeRanges   []model.TimeRange
	SlotDuration int
}

// NormalizeDays dedupes and sorts a selection. Values outside 1..31 are rejected; values that are
// valid days-of-month but absent from a given month are kept and simply produce no slots.
func NormalizeDays(days []int) ([]int, error) {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < MinDay || d > MaxDay {
			return nil, model.Validationf("selected day %d is outside %d..%d", d, MinDay, MaxDay)
		}
		out = append(out, d)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// NormalizeTimetable validates the duration and ranges and returns the ranges ordered by start.
func NormalizeTimetable(ranges []model.TimeRange, slotDuration int) ([]model.TimeRange, error) {
	if slotDuration <= 0 {
		return nil, model.Validationf("slot duration must be a positive number of minutes, got %d", slotDuration)
	}
	if len(ranges) == 0 {
		return nil, model.Validationf("at least one time range is required")
	}
	out := append([]model.TimeRange(nil), ranges...)
	for _, r := range out {
		if r.Start < 0 || r.End > calendar.EndOfDay {
			return nil, model.Validationf("time range %s-%s is outside the day", r.Start, r.End)
		}
		if r.End <= r.Start {
			return nil, model.Validationf("time range end %s must be after start %s", r.End, r.Start)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	for i := 1; i < len(out); i++ {
		if out[i].Start < out[i-1].End {
			return nil, model.Validationf("time ranges %s-%s and %s-%s overlap",
				out[i-1].Start, out[i-1].End, out[i].Start, out[i].End)
		}
	}
	return out, nil
}

// Generate returns every slot for the input, ordered by date then start time. Nothing is returned
// when the input is invalid.
func Generate(in Input) ([]model.Slot, error) {
	days, err := NormalizeDays(in.SelectedDays)
	if err != nil {
		return nil, err
	}
	ranges, err := NormalizeTimetable(in.TimeRanges, in.SlotDuration)
	if err != nil {
		return nil, err
	}
	return expand(in.Month, days, ranges, in.SlotDuration), nil
}

// expand assumes normalized days and ranges.
func expand(month calendar.Month, days []int, ranges []model.TimeRange, duration int) []model.Slot {
	var slots []model.Slot
	for _, day := range days {
		if !month.HasDay(day) {
			continue
		}
		date := month.Day(day)
		for _, r := range ranges {
			// A trailing window shorter than duration is dropped.
			for from := r.Start; from.Add(duration) <= r.End; from = from.Add(duration) {
				to := from.Add(duration)
				slots = append(slots, model.Slot{
					ID:       SlotID(date, from, to),
					Date:     date,
					FromTime: from,
					ToTime:   to,
				})
			}
		}
	}
	return slots
}

// SlotID is stable for a (date, from, to) triple, so regenerating a timetable keeps ids.
func SlotID(date calendar.Date, from, to calendar.Clock) string {
	return uuid.NewSHA1(slotNamespace, []byte(Key(date, from, to))).String()
}

// Key is the natural identity of a slot within a schedule.
func Key(date calendar.Date, from, to calendar.Clock) string {
	return date.String() + "T" + from.String() + "/" + to.String()
}

func KeyOf(s model.Slot) string { return Key(s.Date, s.FromTime, s.ToTime) }

// Sort orders slots by date then start time.
func Sort(slots []model.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if c := slots[i].Date.Compare(slots[j].Date); c != 0 {
			return c < 0
		}
		return slots[i].FromTime < slots[j].FromTime
	})
}
