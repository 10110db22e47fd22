package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/slotgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march = calendar.Month{Year: 2024, Month: time.March}

func seed(t *testing.T, store *MemoryStore, id string, days ...int) *model.Schedule {
	t.Helper()
	ranges := []model.TimeRange{{Start: 9 * 60, End: 11 * 60}}
	slots, err := slotgen.Generate(slotgen.Input{Month: march, SelectedDays: days, TimeRanges: ranges, SlotDuration: 60})
	require.NoError(t, err)
	s := &model.Schedule{ID: id, BuildingID: "b-" + id, Month: march, SelectedDays: days, TimeRanges: ranges, SlotDuration: 60, Slots: slots}
	require.NoError(t, store.Create(context.Background(), s))
	return s
}

func TestMemoryCreateConflict(t *testing.T) {
	store := NewMemoryStore()
	s := seed(t, store, "s1", 1)

	dup := &model.Schedule{ID: "s2", BuildingID: s.BuildingID, Month: march}
	assert.ErrorIs(t, store.Create(context.Background(), dup), model.ErrConflict)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := store.GetByBuildingMonth(context.Background(), s.BuildingID, march)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
}

func TestMemoryReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, "s1", 1)

	got, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	got.Slots[0].BookedBy = "intruder"

	again, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, again.Slots[0].IsBooked())
}

func TestMemorySetSlotBookingCAS(t *testing.T) {
	store := NewMemoryStore()
	s := seed(t, store, "s1", 1)
	slotID := s.Slots[0].ID
	at := time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)

	const racers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		losers  int
	)
	for i := 0; i < racers; i++ {
		who := string(rune('a' + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.SetSlotBooking(context.Background(), "s1", slotID, who, at)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, who)
				return
			}
			assert.ErrorIs(t, err, model.ErrAlreadyBooked)
			losers++
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, racers-1, losers)

	got, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	slot, _ := got.Slot(slotID)
	assert.Equal(t, winners[0], slot.BookedBy)
	assert.Equal(t, at, *slot.BookedAt)

	_, err = store.SetSlotBooking(context.Background(), "s1", "nope", "x", at)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryReplaceSlotsRejectsBookedRemoval(t *testing.T) {
	store := NewMemoryStore()
	s := seed(t, store, "s1", 5, 10)
	day10 := s.SlotsOn(march.Day(10))
	_, err := store.SetSlotBooking(context.Background(), "s1", day10[1].ID, "tenant", time.Now())
	require.NoError(t, err)

	_, err = store.ReplaceSlots(context.Background(), Replacement{
		ScheduleID:   "s1",
		SelectedDays: []int{5},
		TimeRanges:   s.TimeRanges,
		SlotDuration: 60,
		Slots:        s.SlotsOn(march.Day(5)),
	})
	require.ErrorIs(t, err, model.ErrDaysWithBookings)
	assert.Equal(t, []int{10}, model.ConflictingDays(err))

	got, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, got.Slots, 4)
	assert.Equal(t, []int{5, 10}, got.SelectedDays)
}

func TestMemoryReplaceSlotsKeepsExistingRows(t *testing.T) {
	store := NewMemoryStore()
	s := seed(t, store, "s1", 5)
	booked, err := store.SetSlotBooking(context.Background(), "s1", s.Slots[0].ID, "tenant", time.Now())
	require.NoError(t, err)

	// The caller's stale copy still shows the slot open; the stored booking must win.
	added, err := slotgen.Generate(slotgen.Input{Month: march, SelectedDays: []int{6}, TimeRanges: s.TimeRanges, SlotDuration: 60})
	require.NoError(t, err)
	next := append(append([]model.Slot{}, s.Slots...), added...)

	updated, err := store.ReplaceSlots(context.Background(), Replacement{
		ScheduleID: "s1", SelectedDays: []int{5, 6}, TimeRanges: s.TimeRanges, SlotDuration: 60, Slots: next,
	})
	require.NoError(t, err)
	require.Len(t, updated.Slots, 4)
	assert.Equal(t, "tenant", updated.Slots[0].BookedBy)
	assert.Equal(t, booked.BookedAt, updated.Slots[0].BookedAt)
	assert.Equal(t, march.Day(6), updated.Slots[3].Date)
}

func TestMemoryListByBuildingNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	for _, m := range []calendar.Month{{Year: 2024, Month: time.January}, {Year: 2024, Month: time.March}, {Year: 2023, Month: time.December}} {
		require.NoError(t, store.Create(context.Background(), &model.Schedule{ID: m.String(), BuildingID: "b1", Month: m}))
	}
	require.NoError(t, store.Create(context.Background(), &model.Schedule{ID: "other", BuildingID: "b2", Month: march}))

	list, err := store.ListByBuilding(context.Background(), "b1")
	require.NoError(t, err)
	var months []string
	for _, s := range list {
		months = append(months, s.Month.String())
	}
	assert.Equal(t, []string{"2024-03", "2024-01", "2023-12"}, months)
}
