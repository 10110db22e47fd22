package storage

import (
	"context"

	"github.com/propdesk/backoffice/libs/db"
)

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Delivery is one attempt to confirm a booking to its booker.
type Delivery struct {
	EventID    string
	ScheduleID string
	SlotID     string
	BuildingID string
	Recipient  string
	Provider   string
	Body       string
	Status     string
	Error      string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, d Delivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO deliveries (event_id, schedule_id, slot_id, building_id, recipient, provider, body, status, error_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
	`, d.EventID, d.ScheduleID, d.SlotID, d.BuildingID, d.Recipient, d.Provider, d.Body, d.Status, d.Error)
	return err
}
