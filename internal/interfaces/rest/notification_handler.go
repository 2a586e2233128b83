package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
)

type NotificationHandler struct {
	svcMgr *services.ServiceManager
}

func NewNotificationHandler(svcMgr *services.ServiceManager) *NotificationHandler {
	return &NotificationHandler{svcMgr: svcMgr}
}

// GetNotifications handles GET /api/notifications?unread=&limit=
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	unreadOnly := queryBool(c, "unread")
	limit := queryInt(c, "limit", 0)

	items, err := h.svcMgr.Notifications.ListNotifications(c.Request.Context(), user.ID, unreadOnly, limit)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	unread, err := h.svcMgr.Notifications.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"unread":        unread,
	})
}

// MarkAsRead handles POST /api/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	id := c.Param("id")
	HandleDeleteEnvelope(c, "Notification marked as read", func() error {
		return h.svcMgr.Notifications.MarkRead(c.Request.Context(), id, user.ID)
	})
}

// MarkAllRead handles POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	HandleDeleteEnvelope(c, "All notifications marked as read", func() error {
		return h.svcMgr.Notifications.MarkAllRead(c.Request.Context(), user.ID)
	})
}
