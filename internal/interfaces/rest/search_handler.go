package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type SearchHandler struct {
	svcMgr *services.ServiceManager
}

func NewSearchHandler(svcMgr *services.ServiceManager) *SearchHandler {
	return &SearchHandler{svcMgr: svcMgr}
}

// GlobalSearch handles GET /api/search?q=
// Results come back grouped per entity, best matches first.
func (h *SearchHandler) GlobalSearch(c *gin.Context) {
	q := c.Query("q")
	HandleGetEnvelope(c, "results", func() (interface{}, error) {
		return h.svcMgr.Search.GlobalSearch(c.Request.Context(), q)
	})
}

// SearchEntity handles GET /api/search/:entity?q=&limit=
func (h *SearchHandler) SearchEntity(c *gin.Context) {
	entity := c.Param("entity")
	q := c.Query("q")
	limit := queryInt(c, "limit", 0)

	HandleGetEnvelope(c, "results", func() (interface{}, error) {
		return h.svcMgr.Search.SearchEntity(c.Request.Context(), entity, q, limit)
	})
}
