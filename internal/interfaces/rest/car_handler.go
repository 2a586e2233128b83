package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
)

type CarHandler struct {
	svcMgr *services.ServiceManager
}

func NewCarHandler(svcMgr *services.ServiceManager) *CarHandler {
	return &CarHandler{
		svcMgr: svcMgr,
	}
}

// ListCars handles GET /api/cars
func (h *CarHandler) ListCars(c *gin.Context) {
	filter := persistence.CarFilter{
		Status:  c.Query("status"),
		Make:    c.Query("make"),
		YearMin: queryInt(c, "year_min", 0),
		YearMax: queryInt(c, "year_max", 0),
		Sort:    c.Query("sort"),
		Dir:     c.Query("dir"),
		Limit:   queryInt(c, "limit", 0),
		Offset:  queryInt(c, "offset", 0),
	}

	cars, total, err := h.svcMgr.Cars.ListCars(c.Request.Context(), filter)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cars":  cars,
		"total": total,
	})
}

// GetCar handles GET /api/cars/:id
func (h *CarHandler) GetCar(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "car", func() (interface{}, error) {
		return h.svcMgr.Cars.GetCar(c.Request.Context(), id)
	})
}

// CreateCar handles POST /api/cars
func (h *CarHandler) CreateCar(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var req services.CreateCarRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "car", "Car created successfully", func() (interface{}, error) {
		return h.svcMgr.Cars.CreateCar(c.Request.Context(), req, user.ID)
	})
}

// UpdateCar handles PATCH /api/cars/:id
func (h *CarHandler) UpdateCar(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	id := c.Param("id")
	var req services.UpdateCarRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "car", "Car updated successfully", func() (interface{}, error) {
		return h.svcMgr.Cars.UpdateCar(c.Request.Context(), id, req, user.ID)
	})
}

// DeleteCar handles DELETE /api/cars/:id
func (h *CarHandler) DeleteCar(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	id := c.Param("id")
	HandleDeleteEnvelope(c, "Car deleted successfully", func() error {
		return h.svcMgr.Cars.DeleteCar(c.Request.Context(), id, user.ID)
	})
}

// GetCarImages handles GET /api/cars/:id/images
func (h *CarHandler) GetCarImages(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "images", func() (interface{}, error) {
		return h.svcMgr.Images.ListByCar(c.Request.Context(), id)
	})
}

// GetCarInspections handles GET /api/cars/:id/inspections
func (h *CarHandler) GetCarInspections(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "inspections", func() (interface{}, error) {
		return h.svcMgr.Inspections.ListByCar(c.Request.Context(), id)
	})
}

// GetCarDeliverables handles GET /api/cars/:id/deliverables
func (h *CarHandler) GetCarDeliverables(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "deliverables", func() (interface{}, error) {
		return h.svcMgr.Deliverables.ListDeliverables(c.Request.Context(), persistence.DeliverableFilter{CarID: id})
	})
}

// CarCopyRequest asks for AI listing copy for a car
type CarCopyRequest struct {
	Tone       string               `json:"tone"`
	Paragraphs int                  `json:"paragraphs"`
	Highlights []string             `json:"highlights"`
	StyleRules []services.StyleRule `json:"style_rules"`
}

// GenerateCopy handles POST /api/cars/:id/copy
func (h *CarHandler) GenerateCopy(c *gin.Context) {
	id := c.Param("id")

	var req CarCopyRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleGetEnvelope(c, "copy", func() (interface{}, error) {
		return h.svcMgr.Copywriting.GenerateListing(c.Request.Context(), services.ListingRequest{
			CarID:      id,
			Tone:       req.Tone,
			Paragraphs: req.Paragraphs,
			Highlights: req.Highlights,
			StyleRules: req.StyleRules,
		})
	})
}
