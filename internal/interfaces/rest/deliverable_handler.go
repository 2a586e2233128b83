package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
)

type DeliverableHandler struct {
	svcMgr *services.ServiceManager
}

func NewDeliverableHandler(svcMgr *services.ServiceManager) *DeliverableHandler {
	return &DeliverableHandler{
		svcMgr: svcMgr,
	}
}

// ListDeliverables handles GET /api/deliverables
func (h *DeliverableHandler) ListDeliverables(c *gin.Context) {
	filter := persistence.DeliverableFilter{
		CarID:      c.Query("car_id"),
		EditStatus: c.Query("edit_status"),
		Platform:   c.Query("platform"),
		Editor:     c.Query("editor"),
	}

	HandleGetEnvelope(c, "deliverables", func() (interface{}, error) {
		return h.svcMgr.Deliverables.ListDeliverables(c.Request.Context(), filter)
	})
}

// GetDeliverable handles GET /api/deliverables/:id
func (h *DeliverableHandler) GetDeliverable(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "deliverable", func() (interface{}, error) {
		return h.svcMgr.Deliverables.GetDeliverable(c.Request.Context(), id)
	})
}

// CreateDeliverable handles POST /api/deliverables
func (h *DeliverableHandler) CreateDeliverable(c *gin.Context) {
	var req services.CreateDeliverableRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "deliverable", "Deliverable created successfully", func() (interface{}, error) {
		return h.svcMgr.Deliverables.CreateDeliverable(c.Request.Context(), req)
	})
}

// UpdateDeliverable handles PATCH /api/deliverables/:id
func (h *DeliverableHandler) UpdateDeliverable(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	id := c.Param("id")
	var req services.UpdateDeliverableRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "deliverable", "Deliverable updated successfully", func() (interface{}, error) {
		return h.svcMgr.Deliverables.UpdateDeliverable(c.Request.Context(), id, req, user.ID)
	})
}

// DeleteDeliverable handles DELETE /api/deliverables/:id
func (h *DeliverableHandler) DeleteDeliverable(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Deliverable deleted successfully", func() error {
		return h.svcMgr.Deliverables.DeleteDeliverable(c.Request.Context(), id)
	})
}

// MigrateMediaTypes handles POST /api/deliverables/migrate-media-types
// Maps legacy free-text type strings onto media type references.
func (h *DeliverableHandler) MigrateMediaTypes(c *gin.Context) {
	report, err := h.svcMgr.Deliverables.MigrateMediaTypes(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
