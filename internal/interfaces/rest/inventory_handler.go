package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type InventoryHandler struct {
	svcMgr *services.ServiceManager
}

func NewInventoryHandler(svcMgr *services.ServiceManager) *InventoryHandler {
	return &InventoryHandler{
		svcMgr: svcMgr,
	}
}

// ListContainers handles GET /api/containers
func (h *InventoryHandler) ListContainers(c *gin.Context) {
	HandleGetEnvelope(c, "containers", func() (interface{}, error) {
		return h.svcMgr.Inventory.ListContainers(c.Request.Context())
	})
}

// GetContainer handles GET /api/containers/:id
func (h *InventoryHandler) GetContainer(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "container", func() (interface{}, error) {
		return h.svcMgr.Inventory.GetContainer(c.Request.Context(), id)
	})
}

// CreateContainer handles POST /api/containers
func (h *InventoryHandler) CreateContainer(c *gin.Context) {
	var req services.ContainerRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "container", "Container created successfully", func() (interface{}, error) {
		return h.svcMgr.Inventory.CreateContainer(c.Request.Context(), req)
	})
}

// UpdateContainer handles PATCH /api/containers/:id
func (h *InventoryHandler) UpdateContainer(c *gin.Context) {
	id := c.Param("id")

	var req services.ContainerRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "container", "Container updated successfully", func() (interface{}, error) {
		return h.svcMgr.Inventory.UpdateContainer(c.Request.Context(), id, req)
	})
}

// DeleteContainer handles DELETE /api/containers/:id
func (h *InventoryHandler) DeleteContainer(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Container deleted successfully", func() error {
		return h.svcMgr.Inventory.DeleteContainer(c.Request.Context(), id)
	})
}

// ListItems handles GET /api/inventory?container_id=&category=
func (h *InventoryHandler) ListItems(c *gin.Context) {
	containerID := c.Query("container_id")
	category := c.Query("category")

	HandleGetEnvelope(c, "items", func() (interface{}, error) {
		return h.svcMgr.Inventory.ListItems(c.Request.Context(), containerID, category)
	})
}

// GetItem handles GET /api/inventory/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "item", func() (interface{}, error) {
		return h.svcMgr.Inventory.GetItem(c.Request.Context(), id)
	})
}

// CreateItem handles POST /api/inventory
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req services.InventoryItemRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "item", "Inventory item created successfully", func() (interface{}, error) {
		return h.svcMgr.Inventory.CreateItem(c.Request.Context(), req)
	})
}

// UpdateItem handles PATCH /api/inventory/:id
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id := c.Param("id")

	var req services.InventoryItemRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "item", "Inventory item updated successfully", func() (interface{}, error) {
		return h.svcMgr.Inventory.UpdateItem(c.Request.Context(), id, req)
	})
}

// DeleteItem handles DELETE /api/inventory/:id
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Inventory item deleted successfully", func() error {
		return h.svcMgr.Inventory.DeleteItem(c.Request.Context(), id)
	})
}

// CheckoutRequest names who takes the item
type CheckoutRequest struct {
	ContactID string `json:"contact_id" binding:"required"`
}

// CheckoutItem handles POST /api/inventory/:id/checkout
func (h *InventoryHandler) CheckoutItem(c *gin.Context) {
	id := c.Param("id")

	var req CheckoutRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "item", "Item checked out", func() (interface{}, error) {
		return h.svcMgr.Inventory.CheckoutItem(c.Request.Context(), id, req.ContactID)
	})
}

// CheckinItem handles POST /api/inventory/:id/checkin
func (h *InventoryHandler) CheckinItem(c *gin.Context) {
	id := c.Param("id")
	HandleUpdateEnvelope(c, "item", "Item checked in", func() (interface{}, error) {
		return h.svcMgr.Inventory.CheckinItem(c.Request.Context(), id)
	})
}
