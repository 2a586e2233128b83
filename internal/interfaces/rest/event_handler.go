package rest

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

type EventHandler struct {
	svcMgr *services.ServiceManager
}

func NewEventHandler(svcMgr *services.ServiceManager) *EventHandler {
	return &EventHandler{
		svcMgr: svcMgr,
	}
}

// ListEvents handles GET /api/events?from=&to=&car_id=&project_id=&type=
func (h *EventHandler) ListEvents(c *gin.Context) {
	filter := persistence.EventFilter{
		From:      queryTime(c, "from"),
		To:        queryTime(c, "to"),
		CarID:     c.Query("car_id"),
		ProjectID: c.Query("project_id"),
		EventType: c.Query("type"),
	}

	HandleGetEnvelope(c, "events", func() (interface{}, error) {
		return h.svcMgr.Events.ListEvents(c.Request.Context(), filter)
	})
}

// UpcomingEvents handles GET /api/events/upcoming?days=
func (h *EventHandler) UpcomingEvents(c *gin.Context) {
	days := queryInt(c, "days", constants.UpcomingWindowDays)
	window := time.Duration(days) * 24 * time.Hour

	HandleGetEnvelope(c, "events", func() (interface{}, error) {
		return h.svcMgr.Events.UpcomingEvents(c.Request.Context(), window)
	})
}

// GetEvent handles GET /api/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "event", func() (interface{}, error) {
		return h.svcMgr.Events.GetEvent(c.Request.Context(), id)
	})
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req services.EventRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "event", "Event created successfully", func() (interface{}, error) {
		return h.svcMgr.Events.CreateEvent(c.Request.Context(), req)
	})
}

// UpdateEvent handles PATCH /api/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id := c.Param("id")

	var req services.EventRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "event", "Event updated successfully", func() (interface{}, error) {
		return h.svcMgr.Events.UpdateEvent(c.Request.Context(), id, req)
	})
}

// DeleteEvent handles DELETE /api/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Event deleted successfully", func() error {
		return h.svcMgr.Events.DeleteEvent(c.Request.Context(), id)
	})
}
