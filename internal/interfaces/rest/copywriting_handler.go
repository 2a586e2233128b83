package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type CopywritingHandler struct {
	svcMgr *services.ServiceManager
}

func NewCopywritingHandler(svcMgr *services.ServiceManager) *CopywritingHandler {
	return &CopywritingHandler{svcMgr: svcMgr}
}

// GenerateListing handles POST /api/copywriting/listing
func (h *CopywritingHandler) GenerateListing(c *gin.Context) {
	var req services.ListingRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleGetEnvelope(c, "copy", func() (interface{}, error) {
		return h.svcMgr.Copywriting.GenerateListing(c.Request.Context(), req)
	})
}

// GenerateCaption handles POST /api/copywriting/caption
func (h *CopywritingHandler) GenerateCaption(c *gin.Context) {
	var req services.CaptionRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleGetEnvelope(c, "copy", func() (interface{}, error) {
		return h.svcMgr.Copywriting.GenerateCaption(c.Request.Context(), req)
	})
}
