package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type ContactHandler struct {
	svcMgr *services.ServiceManager
}

func NewContactHandler(svcMgr *services.ServiceManager) *ContactHandler {
	return &ContactHandler{
		svcMgr: svcMgr,
	}
}

// ListContacts handles GET /api/contacts?role=&active=
func (h *ContactHandler) ListContacts(c *gin.Context) {
	role := c.Query("role")
	activeOnly := queryBool(c, "active")

	HandleGetEnvelope(c, "contacts", func() (interface{}, error) {
		return h.svcMgr.Contacts.ListContacts(c.Request.Context(), role, activeOnly)
	})
}

// GetContact handles GET /api/contacts/:id
func (h *ContactHandler) GetContact(c *gin.Context) {
	id := c.Param("id")
	HandleGetEnvelope(c, "contact", func() (interface{}, error) {
		return h.svcMgr.Contacts.GetContact(c.Request.Context(), id)
	})
}

// CreateContact handles POST /api/contacts
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req services.ContactRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "contact", "Contact created successfully", func() (interface{}, error) {
		return h.svcMgr.Contacts.CreateContact(c.Request.Context(), req)
	})
}

// UpdateContact handles PATCH /api/contacts/:id
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	id := c.Param("id")

	var req services.ContactRequest
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "contact", "Contact updated successfully", func() (interface{}, error) {
		return h.svcMgr.Contacts.UpdateContact(c.Request.Context(), id, req)
	})
}

// DeleteContact handles DELETE /api/contacts/:id
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	id := c.Param("id")
	HandleDeleteEnvelope(c, "Contact deleted successfully", func() error {
		return h.svcMgr.Contacts.DeleteContact(c.Request.Context(), id)
	})
}
