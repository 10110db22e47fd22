package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/stretchr/testify/assert"
)

func TestErrorKindsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("book: %w", AlreadyBooked())
	assert.ErrorIs(t, err, ErrAlreadyBooked)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindAlreadyBooked, KindOf(err))
	assert.Equal(t, "book: this slot was just taken", err.Error())
	assert.Equal(t, Kind(0), KindOf(errors.New("driver exploded")))
}

func TestDaysWithBookingsCarriesDays(t *testing.T) {
	err := DaysWithBookings([]int{10, 12})
	assert.ErrorIs(t, err, ErrDaysWithBookings)
	assert.Equal(t, []int{10, 12}, ConflictingDays(err))
	assert.Equal(t, "cannot remove days 10, 12: booked slots exist", err.Error())
	assert.Nil(t, ConflictingDays(NotFoundf("schedule %s", "x")))
}

func TestSlotExpiry(t *testing.T) {
	today := calendar.Date{Year: 2024, Month: time.March, Day: 15}
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, calendar.Zone)

	morning := Slot{Date: today, FromTime: 9 * 60, ToTime: 10 * 60}
	noon := Slot{Date: today, FromTime: 12 * 60, ToTime: 13 * 60}
	yesterday := Slot{Date: calendar.Date{Year: 2024, Month: time.March, Day: 14}, FromTime: 20 * 60}
	tomorrow := Slot{Date: calendar.Date{Year: 2024, Month: time.March, Day: 16}, FromTime: 0}

	assert.True(t, morning.IsExpired(now))
	assert.False(t, noon.IsExpired(now))
	assert.True(t, yesterday.IsExpired(now))
	assert.False(t, tomorrow.IsExpired(now))

	noon.BookedBy = "tenant-1"
	assert.False(t, noon.IsOpen(now))
}

func TestCloneIsDeep(t *testing.T) {
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s := &Schedule{
		SelectedDays: []int{1},
		Slots:        []Slot{{ID: "a", BookedBy: "t", BookedAt: &at}},
	}
	c := s.Clone()
	c.SelectedDays[0] = 2
	c.Slots[0].BookedBy = "other"
	*c.Slots[0].BookedAt = at.Add(time.Hour)

	assert.Equal(t, 1, s.SelectedDays[0])
	assert.Equal(t, "t", s.Slots[0].BookedBy)
	assert.Equal(t, at, *s.Slots[0].BookedAt)
}
