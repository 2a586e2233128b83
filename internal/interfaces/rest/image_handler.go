package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
)

type ImageHandler struct {
	svcMgr *services.ServiceManager
}

func NewImageHandler(svcMgr *services.ServiceManager) *ImageHandler {
	return &ImageHandler{
		svcMgr: svcMgr,
	}
}

// Upload handles POST /api/images/upload (multipart)
// Accepts one or more files under the "files" field plus an optional car_id.
func (h *ImageHandler) Upload(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		// Single-file clients use "file"
		fileHeaders = form.File["file"]
	}
	if len(fileHeaders) == 0 {
		RespondError(c, http.StatusBadRequest, "No files uploaded")
		return
	}

	var carID *string
	if v := c.PostForm("car_id"); v != "" {
		carID = &v
	}

	files := make([]services.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "Failed to read uploaded file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "Failed to read uploaded file "+fh.Filename)
			return
		}
		files = append(files, services.UploadFile{Filename: fh.Filename, Data: data})
	}

	result, err := h.svcMgr.Images.UploadImages(c.Request.Context(), carID, files, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"batch_id": result.BatchID,
		"images":   result.Images,
	})
}

// UploadStatus handles GET /api/images/upload/:batch/status
func (h *ImageHandler) UploadStatus(c *gin.Context) {
	batchID := c.Param("batch")

	status, ok := h.svcMgr.Images.BatchStatus(batchID)
	if !ok {
		RespondAppError(c, errors.NewNotFoundError("Upload batch", batchID))
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetImage handles GET /api/images/:id
func (h *ImageHandler) GetImage(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "image", func() (interface{}, error) {
		return h.svcMgr.Images.GetImage(c.Request.Context(), id)
	})
}

// ListImages handles GET /api/images?car_id=
func (h *ImageHandler) ListImages(c *gin.Context) {
	carID := c.Query("car_id")
	if carID == "" {
		RespondAppError(c, errors.NewValidationError("car_id", "car_id query parameter is required"))
		return
	}

	HandleGetEnvelope(c, "images", func() (interface{}, error) {
		return h.svcMgr.Images.ListByCar(c.Request.Context(), carID)
	})
}

// UpdateImage handles PATCH /api/images/:id
func (h *ImageHandler) UpdateImage(c *gin.Context) {
	id := c.Param("id")

	var req services.UpdateImageRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "image", "Image updated successfully", func() (interface{}, error) {
		return h.svcMgr.Images.UpdateImage(c.Request.Context(), id, req)
	})
}

// DeleteImage handles DELETE /api/images/:id
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Image deleted successfully", func() error {
		return h.svcMgr.Images.DeleteImage(c.Request.Context(), id)
	})
}

// ExtendCanvas handles POST /api/images/:id/extend-canvas
func (h *ImageHandler) ExtendCanvas(c *gin.Context) {
	id := c.Param("id")

	var req services.ExtendCanvasRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svcMgr.Images.ExtendCanvas(c.Request.Context(), id, req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Matte handles POST /api/images/:id/matte
func (h *ImageHandler) Matte(c *gin.Context) {
	id := c.Param("id")

	var req services.MatteRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svcMgr.Images.Matte(c.Request.Context(), id, req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Crop handles POST /api/images/:id/crop
func (h *ImageHandler) Crop(c *gin.Context) {
	id := c.Param("id")

	var req services.CropRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svcMgr.Images.Crop(c.Request.Context(), id, req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
