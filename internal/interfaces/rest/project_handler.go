package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type ProjectHandler struct {
	svcMgr *services.ServiceManager
}

func NewProjectHandler(svcMgr *services.ServiceManager) *ProjectHandler {
	return &ProjectHandler{
		svcMgr: svcMgr,
	}
}

// ListProjects handles GET /api/projects?status=
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	status := c.Query("status")
	HandleGetEnvelope(c, "projects", func() (interface{}, error) {
		return h.svcMgr.Projects.ListProjects(c.Request.Context(), status)
	})
}

// GetProject handles GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "project", func() (interface{}, error) {
		return h.svcMgr.Projects.GetProject(c.Request.Context(), id)
	})
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req services.ProjectRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "project", "Project created successfully", func() (interface{}, error) {
		return h.svcMgr.Projects.CreateProject(c.Request.Context(), req)
	})
}

// UpdateProject handles PATCH /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id := c.Param("id")

	var req services.ProjectRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "project", "Project updated successfully", func() (interface{}, error) {
		return h.svcMgr.Projects.UpdateProject(c.Request.Context(), id, req)
	})
}

// ReplaceProjectCarsRequest swaps the linked car set wholesale
type ReplaceProjectCarsRequest struct {
	CarIDs []string `json:"car_ids"`
}

// ReplaceProjectCars handles PUT /api/projects/:id/cars
func (h *ProjectHandler) ReplaceProjectCars(c *gin.Context) {
	id := c.Param("id")

	var req ReplaceProjectCarsRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "project", "Project cars updated successfully", func() (interface{}, error) {
		return h.svcMgr.Projects.ReplaceProjectCars(c.Request.Context(), id, req.CarIDs)
	})
}

// DeleteProject handles DELETE /api/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Project deleted successfully", func() error {
		return h.svcMgr.Projects.DeleteProject(c.Request.Context(), id)
	})
}
