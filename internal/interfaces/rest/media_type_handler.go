package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type MediaTypeHandler struct {
	svcMgr *services.ServiceManager
}

func NewMediaTypeHandler(svcMgr *services.ServiceManager) *MediaTypeHandler {
	return &MediaTypeHandler{
		svcMgr: svcMgr,
	}
}

// ListMediaTypes handles GET /api/media-types?active=
func (h *MediaTypeHandler) ListMediaTypes(c *gin.Context) {
	activeOnly := queryBool(c, "active")
	HandleGetEnvelope(c, "media_types", func() (interface{}, error) {
		return h.svcMgr.MediaTypes.ListMediaTypes(c.Request.Context(), activeOnly)
	})
}

// GetMediaType handles GET /api/media-types/:id
func (h *MediaTypeHandler) GetMediaType(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "media_type", func() (interface{}, error) {
		return h.svcMgr.MediaTypes.GetMediaType(c.Request.Context(), id)
	})
}

// CreateMediaType handles POST /api/media-types
func (h *MediaTypeHandler) CreateMediaType(c *gin.Context) {
	var req services.MediaTypeRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "media_type", "Media type created successfully", func() (interface{}, error) {
		return h.svcMgr.MediaTypes.CreateMediaType(c.Request.Context(), req)
	})
}

// UpdateMediaType handles PATCH /api/media-types/:id
func (h *MediaTypeHandler) UpdateMediaType(c *gin.Context) {
	id := c.Param("id")

	var req services.MediaTypeRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "media_type", "Media type updated successfully", func() (interface{}, error) {
		return h.svcMgr.MediaTypes.UpdateMediaType(c.Request.Context(), id, req)
	})
}

// DeleteMediaType handles DELETE /api/media-types/:id
func (h *MediaTypeHandler) DeleteMediaType(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Media type deleted successfully", func() error {
		return h.svcMgr.MediaTypes.DeleteMediaType(c.Request.Context(), id)
	})
}
