package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/propdesk/backoffice/libs/kafkax"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlotBookedPayload(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 5, 0, 0, calendar.Zone)
	s := &model.Schedule{ID: "sched-1", BuildingID: "bldg-1"}
	slot := model.Slot{
		ID:       "slot-1",
		Date:     calendar.Date{Year: 2024, Month: time.March, Day: 15},
		FromTime: 9 * 60,
		ToTime:   10 * 60,
		BookedBy: "tenant-1",
		BookedAt: &at,
	}

	b, err := json.Marshal(NewSlotBookedPayload(s, slot))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"schedule_id":"sched-1","slot_id":"slot-1","building_id":"bldg-1","booker_id":"tenant-1",
		"date":"2024-03-15","from_time":"09:00","to_time":"10:00","booked_at":"2024-03-01T02:05:00Z"
	}`, string(b))
}

func TestMessagesUseEventTypeAsTopic(t *testing.T) {
	msgs := Messages(context.Background(), []Record{{
		ID: 7, EventID: "evt-1", AggregateID: "sched-1", EventType: TopicSlotBooked, Payload: []byte(`{}`),
	}})
	require.Len(t, msgs, 1)
	assert.Equal(t, TopicSlotBooked, msgs[0].Topic)
	assert.Equal(t, "sched-1", string(msgs[0].Key))
	assert.Equal(t, "evt-1", kafkax.HeaderValue(msgs[0].Headers, kafkax.HeaderEventID))
}
