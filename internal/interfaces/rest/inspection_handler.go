package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type InspectionHandler struct {
	svcMgr *services.ServiceManager
}

func NewInspectionHandler(svcMgr *services.ServiceManager) *InspectionHandler {
	return &InspectionHandler{
		svcMgr: svcMgr,
	}
}

// GetInspection handles GET /api/inspections/:id
func (h *InspectionHandler) GetInspection(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "inspection", func() (interface{}, error) {
		return h.svcMgr.Inspections.GetInspection(c.Request.Context(), id)
	})
}

// CreateInspection handles POST /api/inspections
func (h *InspectionHandler) CreateInspection(c *gin.Context) {
	var req services.CreateInspectionRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "inspection", "Inspection created successfully", func() (interface{}, error) {
		return h.svcMgr.Inspections.CreateInspection(c.Request.Context(), req)
	})
}

// UpdateInspection handles PATCH /api/inspections/:id
func (h *InspectionHandler) UpdateInspection(c *gin.Context) {
	id := c.Param("id")

	var req services.UpdateInspectionRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "inspection", "Inspection updated successfully", func() (interface{}, error) {
		return h.svcMgr.Inspections.UpdateInspection(c.Request.Context(), id, req)
	})
}

// CompleteInspection handles POST /api/inspections/:id/complete
// Final status comes from the checklist: any failed item fails the inspection.
func (h *InspectionHandler) CompleteInspection(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	id := c.Param("id")
	HandleUpdateEnvelope(c, "inspection", "Inspection completed", func() (interface{}, error) {
		return h.svcMgr.Inspections.CompleteInspection(c.Request.Context(), id, user.ID)
	})
}

// DeleteInspection handles DELETE /api/inspections/:id
func (h *InspectionHandler) DeleteInspection(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Inspection deleted successfully", func() error {
		return h.svcMgr.Inspections.DeleteInspection(c.Request.Context(), id)
	})
}
