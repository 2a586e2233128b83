package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

// AdminHandler handles administrative endpoints
type AdminHandler struct {
	svc *services.ServiceManager
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc *services.ServiceManager) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// GetTables returns the tables reports may query
func (h *AdminHandler) GetTables(c *gin.Context) {
	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		tables := h.svc.Reports.ReportableTables()
		return map[string]interface{}{
			"total":  len(tables),
			"tables": tables,
		}, nil
	})
}

// MigrateMetadata handles POST /api/admin/migrate-metadata
// Synchronous: the response carries the full per-image outcome counts.
func (h *AdminHandler) MigrateMetadata(c *gin.Context) {
	report, err := h.svc.Migration.Run(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetJobs handles GET /api/admin/jobs
func (h *AdminHandler) GetJobs(c *gin.Context) {
	HandleGetEnvelope(c, "jobs", func() (interface{}, error) {
		return h.svc.Scheduler.ListJobs(c.Request.Context())
	})
}

// UpdateJob handles PATCH /api/admin/jobs/:id
// Changing the cron or timezone recomputes the next run immediately.
func (h *AdminHandler) UpdateJob(c *gin.Context) {
	id := c.Param("id")

	var req services.JobUpdateRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "job", "Scheduled job updated successfully", func() (interface{}, error) {
		return h.svc.Scheduler.UpdateJob(c.Request.Context(), id, req)
	})
}

// Health handles GET /health. No auth: load balancers hit this.
func (h *AdminHandler) Health(c *gin.Context) {
	status := "ok"
	dbState := "up"
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		status = "degraded"
		dbState = "down"
	}

	outbox, err := h.svc.Outbox.Depth(c.Request.Context())
	if err != nil {
		outbox = map[string]int{}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"database":       dbState,
		"outbox":         outbox,
		"analysis_queue": h.svc.Analysis.QueueDepth(),
	})
}
