package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/slotgen"
)

// MemoryStore keeps schedules in process. A single mutex serializes writes, which makes the
// booking compare-and-swap trivially atomic.
type MemoryStore struct {
	mu        sync.RWMutex
	schedules map[string]*model.Schedule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{schedules: map[string]*model.Schedule{}}
}

func (m *MemoryStore) Create(_ context.Context, s *model.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.schedules[s.ID]; ok {
		return model.Conflictf("schedule %s already exists", s.ID)
	}
	for _, existing := range m.schedules {
		if existing.BuildingID == s.BuildingID && existing.Month == s.Month {
			return model.Conflictf("building %s already has a schedule for %s", s.BuildingID, s.Month)
		}
	}
	m.schedules[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, scheduleID string) (*model.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.schedules[scheduleID]
	if !ok {
		return nil, model.NotFoundf("schedule %s not found", scheduleID)
	}
	return s.Clone(), nil
}

func (m *MemoryStore) GetByBuildingMonth(_ context.Context, buildingID string, month calendar.Month) (*model.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.schedules {
		if s.BuildingID == buildingID && s.Month == month {
			return s.Clone(), nil
		}
	}
	return nil, model.NotFoundf("no schedule for building %s in %s", buildingID, month)
}

func (m *MemoryStore) ListByBuilding(_ context.Context, buildingID string) ([]*model.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*model.Schedule{}
	for _, s := range m.schedules {
		if s.BuildingID == buildingID {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Month.Before(out[i].Month) })
	return out, nil
}

func (m *MemoryStore) ReplaceSlots(_ context.Context, r Replacement) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[r.ScheduleID]
	if !ok {
		return nil, model.NotFoundf("schedule %s not found", r.ScheduleID)
	}

	wanted := make(map[string]model.Slot, len(r.Slots))
	for _, slot := range r.Slots {
		wanted[slot.ID] = slot
	}

	var removed []model.Slot
	next := make([]model.Slot, 0, len(r.Slots))
	present := map[string]bool{}
	for _, cur := range s.Slots {
		if _, keep := wanted[cur.ID]; keep {
			next = append(next, cur)
			present[cur.ID] = true
			continue
		}
		removed = append(removed, cur)
	}
	if days := bookedDaysOf(removed); len(days) > 0 {
		return nil, model.DaysWithBookings(days)
	}
	for _, slot := range r.Slots {
		if !present[slot.ID] {
			slot.BookedBy, slot.BookedAt = "", nil
			next = append(next, slot)
		}
	}
	slotgen.Sort(next)

	updated := s.Clone()
	updated.SelectedDays = append([]int(nil), r.SelectedDays...)
	updated.TimeRanges = append([]model.TimeRange(nil), r.TimeRanges...)
	updated.SlotDuration = r.SlotDuration
	updated.Slots = next
	updated.UpdatedAt = r.UpdatedAt
	m.schedules[r.ScheduleID] = updated
	return updated.Clone(), nil
}

func (m *MemoryStore) SetSlotBooking(_ context.Context, scheduleID, slotID, bookedBy string, bookedAt time.Time) (model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[scheduleID]
	if !ok {
		return model.Slot{}, model.NotFoundf("schedule %s not found", scheduleID)
	}
	for i := range s.Slots {
		slot := &s.Slots[i]
		if slot.ID != slotID {
			continue
		}
		if slot.IsBooked() {
			return model.Slot{}, model.AlreadyBooked()
		}
		at := bookedAt
		slot.BookedBy = bookedBy
		slot.BookedAt = &at
		out := *slot
		out.BookedAt = &bookedAt
		return out, nil
	}
	return model.Slot{}, model.NotFoundf("slot %s not found in schedule %s", slotID, scheduleID)
}

var _ Store = (*MemoryStore)(nil)
