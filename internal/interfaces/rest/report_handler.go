package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type ReportHandler struct {
	svcMgr *services.ServiceManager
}

func NewReportHandler(svcMgr *services.ServiceManager) *ReportHandler {
	return &ReportHandler{svcMgr: svcMgr}
}

// ReportQueryRequest carries one raw SELECT statement
type ReportQueryRequest struct {
	SQL string `json:"sql" binding:"required"`
}

// RunQuery handles POST /api/reports/query
// The statement is parsed and rejected unless it is a single SELECT
// against reportable tables. A row cap is injected when absent.
func (h *ReportHandler) RunQuery(c *gin.Context) {
	var req ReportQueryRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svcMgr.Reports.RunQuery(c.Request.Context(), req.SQL)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
