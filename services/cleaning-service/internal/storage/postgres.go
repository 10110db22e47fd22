package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/propdesk/backoffice/libs/db"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
)

// PostgresStore persists schedules in cleaning_schedules and their slots in cleaning_slots.
type PostgresStore struct {
	pool *db.Pool
}

func NewPostgresStore(pool *db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const scheduleColumns = `id, building_id, month, selected_days, time_ranges, slot_duration, created_at, updated_at`

const slotColumns = `id, slot_date, from_minute, to_minute, booked_by, booked_at`

func (p *PostgresStore) Create(ctx context.Context, s *model.Schedule) error {
	ranges, err := json.Marshal(s.TimeRanges)
	if err != nil {
		return err
	}
	return p.pool.InTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO cleaning_schedules (`+scheduleColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, s.ID, s.BuildingID, s.Month.String(), toInt32s(s.SelectedDays), ranges, s.SlotDuration, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return model.Conflictf("building %s already has a schedule for %s", s.BuildingID, s.Month)
			}
			return fmt.Errorf("insert schedule: %w", err)
		}
		return insertSlots(ctx, tx, s.ID, s.Slots)
	})
}

func (p *PostgresStore) Get(ctx context.Context, scheduleID string) (*model.Schedule, error) {
	return getSchedule(ctx, p.pool, `WHERE id = $1`, scheduleID)
}

func (p *PostgresStore) GetByBuildingMonth(ctx context.Context, buildingID string, month calendar.Month) (*model.Schedule, error) {
	return getSchedule(ctx, p.pool, `WHERE building_id = $1 AND month = $2`, buildingID, month.String())
}

func (p *PostgresStore) ListByBuilding(ctx context.Context, buildingID string) ([]*model.Schedule, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+scheduleColumns+`
		FROM cleaning_schedules
		WHERE building_id = $1
		ORDER BY month DESC
	`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, s := range out {
		if s.Slots, err = loadSlots(ctx, p.pool, s.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *PostgresStore) ReplaceSlots(ctx context.Context, r Replacement) (*model.Schedule, error) {
	ranges, err := json.Marshal(r.TimeRanges)
	if err != nil {
		return nil, err
	}

	var out *model.Schedule
	err = p.pool.InTx(ctx, func(tx pgx.Tx) error {
		// Serializes editors on the same schedule. Bookings do not take this lock.
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM cleaning_schedules WHERE id = $1 FOR UPDATE`, r.ScheduleID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NotFoundf("schedule %s not found", r.ScheduleID)
		}
		if err != nil {
			return err
		}

		current, err := loadSlots(ctx, tx, id)
		if err != nil {
			return err
		}
		wanted := make(map[string]bool, len(r.Slots))
		for _, s := range r.Slots {
			wanted[s.ID] = true
		}
		existing := make(map[string]bool, len(current))
		var removed []model.Slot
		var removeIDs []string
		for _, s := range current {
			existing[s.ID] = true
			if !wanted[s.ID] {
				removed = append(removed, s)
				removeIDs = append(removeIDs, s.ID)
			}
		}
		if days := bookedDaysOf(removed); len(days) > 0 {
			return model.DaysWithBookings(days)
		}

		if len(removeIDs) > 0 {
			tag, err := tx.Exec(ctx, `
				DELETE FROM cleaning_slots
				WHERE schedule_id = $1 AND id = ANY($2) AND booked_by IS NULL
			`, id, removeIDs)
			if err != nil {
				return fmt.Errorf("delete slots: %w", err)
			}
			if tag.RowsAffected() != int64(len(removeIDs)) {
				// A booking committed between the read above and the delete.
				days, err := bookedDaysAmong(ctx, tx, id, removeIDs)
				if err != nil {
					return err
				}
				return model.DaysWithBookings(days)
			}
		}

		var added []model.Slot
		for _, s := range r.Slots {
			if !existing[s.ID] {
				added = append(added, s)
			}
		}
		if err := insertSlots(ctx, tx, id, added); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE cleaning_schedules
			SET selected_days = $2, time_ranges = $3, slot_duration = $4, updated_at = $5
			WHERE id = $1
		`, id, toInt32s(r.SelectedDays), ranges, r.SlotDuration, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}

		out, err = getSchedule(ctx, tx, `WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PostgresStore) SetSlotBooking(ctx context.Context, scheduleID, slotID, bookedBy string, bookedAt time.Time) (model.Slot, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE cleaning_slots
		SET booked_by = $3, booked_at = $4
		WHERE schedule_id = $1 AND id = $2 AND booked_by IS NULL
		RETURNING `+slotColumns,
		scheduleID, slotID, bookedBy, bookedAt)
	slot, err := scanSlot(row)
	if err == nil {
		return slot, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Slot{}, err
	}

	// Zero rows: the slot is missing or someone else holds it.
	var holder *string
	err = p.pool.QueryRow(ctx, `
		SELECT booked_by FROM cleaning_slots WHERE schedule_id = $1 AND id = $2
	`, scheduleID, slotID).Scan(&holder)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Slot{}, model.NotFoundf("slot %s not found in schedule %s", slotID, scheduleID)
	}
	if err != nil {
		return model.Slot{}, err
	}
	return model.Slot{}, model.AlreadyBooked()
}

func getSchedule(ctx context.Context, q querier, where string, args ...any) (*model.Schedule, error) {
	row := q.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM cleaning_schedules `+where, args...)
	s, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NotFoundf("schedule not found")
	}
	if err != nil {
		return nil, err
	}
	if s.Slots, err = loadSlots(ctx, q, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

func scanSchedule(row pgx.Row) (*model.Schedule, error) {
	var (
		s      model.Schedule
		month  string
		days   []int32
		ranges []byte
	)
	if err := row.Scan(&s.ID, &s.BuildingID, &month, &days, &ranges, &s.SlotDuration, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	m, err := calendar.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	s.Month = m
	s.SelectedDays = make([]int, len(days))
	for i, d := range days {
		s.SelectedDays[i] = int(d)
	}
	if err := json.Unmarshal(ranges, &s.TimeRanges); err != nil {
		return nil, fmt.Errorf("decode time ranges: %w", err)
	}
	return &s, nil
}

func loadSlots(ctx context.Context, q querier, scheduleID string) ([]model.Slot, error) {
	rows, err := q.Query(ctx, `
		SELECT `+slotColumns+`
		FROM cleaning_slots
		WHERE schedule_id = $1
		ORDER BY slot_date, from_minute
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []model.Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func scanSlot(row pgx.Row) (model.Slot, error) {
	var (
		s        model.Slot
		date     time.Time
		from, to int32
		bookedBy *string
	)
	if err := row.Scan(&s.ID, &date, &from, &to, &bookedBy, &s.BookedAt); err != nil {
		return model.Slot{}, err
	}
	s.Date = calendar.Date{Year: date.Year(), Month: date.Month(), Day: date.Day()}
	s.FromTime = calendar.Clock(from)
	s.ToTime = calendar.Clock(to)
	if bookedBy != nil {
		s.BookedBy = *bookedBy
	}
	return s, nil
}

func bookedDaysAmong(ctx context.Context, tx pgx.Tx, scheduleID string, ids []string) ([]int, error) {
	rows, err := tx.Query(ctx, `
		SELECT DISTINCT EXTRACT(DAY FROM slot_date)::int AS day
		FROM cleaning_slots
		WHERE schedule_id = $1 AND id = ANY($2) AND booked_by IS NOT NULL
		ORDER BY day
	`, scheduleID, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func insertSlots(ctx context.Context, tx pgx.Tx, scheduleID string, slots []model.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"cleaning_slots"},
		[]string{"schedule_id", "id", "slot_date", "from_minute", "to_minute"},
		pgx.CopyFromSlice(len(slots), func(i int) ([]any, error) {
			s := slots[i]
			date := time.Date(s.Date.Year, s.Date.Month, s.Date.Day, 0, 0, 0, 0, time.UTC)
			return []any{scheduleID, s.ID, date, int32(s.FromTime), int32(s.ToTime)}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("insert slots: %w", err)
	}
	return nil
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

var _ Store = (*PostgresStore)(nil)
