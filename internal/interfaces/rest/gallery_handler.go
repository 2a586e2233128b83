package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type GalleryHandler struct {
	svcMgr *services.ServiceManager
}

func NewGalleryHandler(svcMgr *services.ServiceManager) *GalleryHandler {
	return &GalleryHandler{
		svcMgr: svcMgr,
	}
}

// ListGalleries handles GET /api/galleries
func (h *GalleryHandler) ListGalleries(c *gin.Context) {
	HandleGetEnvelope(c, "galleries", func() (interface{}, error) {
		return h.svcMgr.Galleries.ListGalleries(c.Request.Context())
	})
}

// GetGallery handles GET /api/galleries/:id
func (h *GalleryHandler) GetGallery(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "gallery", func() (interface{}, error) {
		return h.svcMgr.Galleries.GetGallery(c.Request.Context(), id)
	})
}

// CreateGallery handles POST /api/galleries
func (h *GalleryHandler) CreateGallery(c *gin.Context) {
	var req services.GalleryRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "gallery", "Gallery created successfully", func() (interface{}, error) {
		return h.svcMgr.Galleries.CreateGallery(c.Request.Context(), req)
	})
}

// UpdateGallery handles PUT /api/galleries/:id
func (h *GalleryHandler) UpdateGallery(c *gin.Context) {
	id := c.Param("id")

	var req services.GalleryRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "gallery", "Gallery updated successfully", func() (interface{}, error) {
		return h.svcMgr.Galleries.UpdateGallery(c.Request.Context(), id, req)
	})
}

// DeleteGallery handles DELETE /api/galleries/:id
func (h *GalleryHandler) DeleteGallery(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Gallery deleted successfully", func() error {
		return h.svcMgr.Galleries.DeleteGallery(c.Request.Context(), id)
	})
}

// GetGalleryImages handles GET /api/galleries/:id/images
func (h *GalleryHandler) GetGalleryImages(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "images", func() (interface{}, error) {
		return h.svcMgr.Galleries.GetGalleryImages(c.Request.Context(), id)
	})
}

// SetGalleryImagesRequest replaces a gallery's membership
type SetGalleryImagesRequest struct {
	ImageIDs []string `json:"image_ids"`
}

// SetGalleryImages handles PUT /api/galleries/:id/images
func (h *GalleryHandler) SetGalleryImages(c *gin.Context) {
	id := c.Param("id")

	var req SetGalleryImagesRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "images", "Gallery images updated successfully", func() (interface{}, error) {
		return h.svcMgr.Galleries.SetGalleryImages(c.Request.Context(), id, req.ImageIDs)
	})
}

// MoveImageRequest reorders one image inside a gallery
type MoveImageRequest struct {
	Position int `json:"position"`
}

// MoveGalleryImage handles POST /api/galleries/:id/images/:imageId/position
func (h *GalleryHandler) MoveGalleryImage(c *gin.Context) {
	id := c.Param("id")
	imageID := c.Param("imageId")

	var req MoveImageRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.svcMgr.Galleries.MoveGalleryImage(c.Request.Context(), id, imageID, req.Position); err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image position updated successfully"})
}
