package outbox

import (
	"time"
)

const (
	AggregateSchedule = "cleaning_schedule"
	TopicSlotBooked   = "cleaning.slot.booked.v1"
)

type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type Record struct {
	ID            int64
	EventID       string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Traceparent   string
	Tracestate    string
	CreatedAt     time.Time
}

// SlotBookedPayload is the booking-confirmed contract consumed by the notification service.
type SlotBookedPayload struct {
	ScheduleID string    `json:"schedule_id"`
	SlotID     string    `json:"slot_id"`
	BuildingID string    `json:"building_id"`
	BookerID   string    `json:"booker_id"`
	Date       string    `json:"date"`
	FromTime   string    `json:"from_time"`
	ToTime     string    `json:"to_time"`
	BookedAt   time.Time `json:"booked_at"`
}
