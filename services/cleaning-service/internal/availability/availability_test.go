package availability

import (
	"testing"
	"time"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/slotgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march = calendar.Month{Year: 2024, Month: time.March}

func schedule(t *testing.T, days ...int) *model.Schedule {
	t.Helper()
	ranges := []model.TimeRange{{Start: 9 * 60, End: 12 * 60}}
	slots, err := slotgen.Generate(slotgen.Input{Month: march, SelectedDays: days, TimeRanges: ranges, SlotDuration: 60})
	require.NoError(t, err)
	return &model.Schedule{ID: "s1", BuildingID: "b1", Month: march, SelectedDays: days, TimeRanges: ranges, SlotDuration: 60, Slots: slots}
}

func book(s *model.Schedule, date calendar.Date, from calendar.Clock, who string) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range s.Slots {
		if s.Slots[i].Date == date && s.Slots[i].FromTime == from {
			s.Slots[i].BookedBy = who
			s.Slots[i].BookedAt = &at
		}
	}
}

func TestDaysWithOpenSlots(t *testing.T) {
	s := schedule(t, 5, 10, 15, 20)
	// Day 15 fully booked; day 10 at 11:30 local has every slot started.
	for _, from := range []calendar.Clock{9 * 60, 10 * 60, 11 * 60} {
		book(s, march.Day(15), from, "t1")
	}
	now := time.Date(2024, 3, 10, 11, 30, 0, 0, calendar.Zone)

	got := DaysWithOpenSlots(s, march, now)
	assert.Equal(t, []calendar.Date{march.Day(20)}, got)

	// Earlier the same morning day 10 still has room.
	early := time.Date(2024, 3, 10, 10, 30, 0, 0, calendar.Zone)
	assert.Equal(t, []calendar.Date{march.Day(10), march.Day(20)}, DaysWithOpenSlots(s, march, early))

	assert.Empty(t, DaysWithOpenSlots(s, calendar.Month{Year: 2024, Month: time.April}, early))
}

func TestOpenSlotsForDateExcludesElapsedAndBooked(t *testing.T) {
	s := schedule(t, 10)
	book(s, march.Day(10), 11*60, "t1")
	now := time.Date(2024, 3, 10, 9, 15, 0, 0, calendar.Zone)

	open := OpenSlotsForDate(s, march.Day(10), now)
	require.Len(t, open, 1)
	assert.Equal(t, calendar.Clock(10*60), open[0].FromTime)

	// Future days are never filtered by time-of-day.
	s2 := schedule(t, 11)
	assert.Len(t, OpenSlotsForDate(s2, march.Day(11), now.Add(14*time.Hour)), 3)
}

func TestAllSlotsForDateIncludesBooker(t *testing.T) {
	s := schedule(t, 10)
	book(s, march.Day(10), 10*60, "tenant-7")

	all := AllSlotsForDate(s, march.Day(10))
	require.Len(t, all, 3)
	assert.Equal(t, "tenant-7", all[1].BookedBy)
	assert.Empty(t, AllSlotsForDate(s, march.Day(11)))
}

func TestSlotsBookedBy(t *testing.T) {
	s := schedule(t, 5, 10)
	book(s, march.Day(10), 9*60, "tenant-7")
	book(s, march.Day(5), 11*60, "tenant-7")
	book(s, march.Day(5), 9*60, "tenant-8")

	mine := SlotsBookedBy(s, "tenant-7")
	require.Len(t, mine, 2)
	assert.Equal(t, march.Day(5), mine[0].Date)
	assert.Equal(t, march.Day(10), mine[1].Date)
	assert.Empty(t, SlotsBookedBy(s, ""))
}

func TestBuildMonthView(t *testing.T) {
	s := schedule(t, 1, 15, 31)
	book(s, march.Day(15), 9*60, "t1")
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, calendar.Zone)

	v := BuildMonthView(s, now)
	assert.Equal(t, 5, v.LeadingBlanks) // 2024-03-01 is a Friday
	require.Len(t, v.Days, 31)

	first := v.Days[0]
	assert.True(t, first.Selected)
	assert.True(t, first.Past)
	assert.Equal(t, 3, first.Expired)

	mid := v.Days[14]
	assert.Equal(t, DayView{Date: march.Day(15), Day: 15, Selected: true, Open: 1, Booked: 1, Expired: 1}, mid)

	last := v.Days[30]
	assert.Equal(t, 3, last.Open)
	assert.False(t, v.Days[1].Selected)
}
