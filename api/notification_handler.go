package api

import (
	"strconv"

	"cyberguard/service/notify"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifier *notify.Service
}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{
		notifier: notify.NewService(),
	}
}

// ListNotifications returns recent notifications for the caller's
// organization
// GET /api/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, err := h.notifier.List(currentOrgID(c), limit)
	if err != nil {
		utils.InternalError(c, err.Error())
		return
	}

	utils.Success(c, notifications)
}

// MarkNotificationRead flags a notification as read
// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.notifier.MarkRead(currentOrgID(c), c.Param("id")); err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "Notification marked as read", nil)
}
