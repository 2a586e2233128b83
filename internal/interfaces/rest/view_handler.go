package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type ViewHandler struct {
	svcMgr *services.ServiceManager
}

func NewViewHandler(svcMgr *services.ServiceManager) *ViewHandler {
	return &ViewHandler{svcMgr: svcMgr}
}

// ListViews handles GET /api/views?entity=
func (h *ViewHandler) ListViews(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	entity := c.Query("entity")
	HandleGetEnvelope(c, "views", func() (interface{}, error) {
		return h.svcMgr.Views.ListViews(c.Request.Context(), user.ID, entity)
	})
}

// GetView handles GET /api/views/:id
func (h *ViewHandler) GetView(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	id := c.Param("id")
	HandleGetEnvelope(c, "view", func() (interface{}, error) {
		return h.svcMgr.Views.GetView(c.Request.Context(), user.ID, id)
	})
}

// CreateView handles POST /api/views
func (h *ViewHandler) CreateView(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var req services.SavedViewRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "view", "View created successfully", func() (interface{}, error) {
		return h.svcMgr.Views.CreateView(c.Request.Context(), user.ID, req)
	})
}

// UpdateView handles PATCH /api/views/:id
func (h *ViewHandler) UpdateView(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	id := c.Param("id")
	var req services.SavedViewRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "view", "View updated successfully", func() (interface{}, error) {
		return h.svcMgr.Views.UpdateView(c.Request.Context(), user.ID, id, req)
	})
}

// DeleteView handles DELETE /api/views/:id
func (h *ViewHandler) DeleteView(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	id := c.Param("id")
	HandleDeleteEnvelope(c, "View deleted successfully", func() error {
		return h.svcMgr.Views.DeleteView(c.Request.Context(), user.ID, id)
	})
}

// RunView handles POST /api/views/:id/run?limit=
// Compiles the stored filter expression and executes it against the
// view's entity table.
func (h *ViewHandler) RunView(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	id := c.Param("id")
	limit := queryInt(c, "limit", 0)

	result, err := h.svcMgr.Views.RunView(c.Request.Context(), user.ID, id, limit)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
