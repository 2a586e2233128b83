package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

func TestRenderNotificationCoversEveryNotifiedEvent(t *testing.T) {
	p := EventPayload{
		Entity:   "car",
		EntityID: "11111111-1111-1111-1111-111111111111",
		Detail: map[string]interface{}{
			"display_name": "1973 Porsche 911",
			"filename":     "front.jpg",
			"caption":      "A silver coupe",
			"title":        "Pre-sale check",
			"verdict":      "pass",
			"to":           "done",
			"start_at":     "2024-06-01T10:00:00Z",
		},
	}

	for _, eventType := range notifiedEvents {
		text, ok := renderNotification(eventType, p)
		assert.True(t, ok, "event %s should render", eventType)
		assert.NotEmpty(t, text.title, "event %s should have a title", eventType)
	}
}

func TestRenderNotificationBodies(t *testing.T) {
	carID := "22222222-2222-2222-2222-222222222222"

	created, ok := renderNotification(constants.EventCarCreated, EventPayload{
		Entity:   "car",
		EntityID: carID,
		Detail:   map[string]interface{}{"display_name": "1990 Mazda MX-5"},
	})
	require.True(t, ok)
	assert.Equal(t, "Car added", created.title)
	assert.Equal(t, "1990 Mazda MX-5", created.body)
	assert.Equal(t, "/cars/"+carID, created.link)

	// Lists arrive as []interface{} after the outbox JSON round-trip
	updated, ok := renderNotification(constants.EventCarUpdated, EventPayload{
		Entity:   "car",
		EntityID: carID,
		Detail:   map[string]interface{}{"fields": []interface{}{"price_asking", "status"}},
	})
	require.True(t, ok)
	assert.Equal(t, "2 fields changed", updated.body)

	deleted, ok := renderNotification(constants.EventCarDeleted, EventPayload{
		Entity:   "car",
		EntityID: carID,
		Detail:   map[string]interface{}{"display_name": "1990 Mazda MX-5"},
	})
	require.True(t, ok)
	assert.Empty(t, deleted.link, "deleted cars have no page to link to")

	status, ok := renderNotification(constants.EventDeliverableStatus, EventPayload{
		Entity:   "deliverable",
		EntityID: "33333333-3333-3333-3333-333333333333",
		Detail:   map[string]interface{}{"title": "Launch film", "from": "in_progress", "to": "review"},
	})
	require.True(t, ok)
	assert.Equal(t, "Launch film is now review", status.body)
}

func TestRenderNotificationUnknownType(t *testing.T) {
	_, ok := renderNotification("car.repainted", EventPayload{Entity: "car", EntityID: "x"})
	assert.False(t, ok)
}

func TestDetailStringsSurvivesJSONRoundTrip(t *testing.T) {
	original := EventPayload{
		Entity:   "car",
		EntityID: "44444444-4444-4444-4444-444444444444",
		Detail:   map[string]interface{}{"fields": []string{"vin", "mileage", "color_exterior"}},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded EventPayload
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, []string{"vin", "mileage", "color_exterior"}, detailStrings(decoded, "fields"))
	assert.Nil(t, detailStrings(decoded, "missing"))
	assert.Equal(t, "", detailString(decoded, "missing"))
}
