package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/auth"
)

type NotificationsController struct {
	store NotificationStore
}

func NewNotificationsController(store NotificationStore) *NotificationsController {
	return &NotificationsController{store: store}
}

type notificationQuery struct {
	Limit int `form:"limit"`
}

// List handles GET /api/notifications for the signed-in account.
func (nc *NotificationsController) List(c *gin.Context) {
	var q notificationQuery
	if !bindQuery(c, &q) {
		return
	}

	rows, err := nc.store.ListForUser(c.Request.Context(), auth.GetUserID(c), q.Limit)
	if err != nil {
		respondInternalError(c, "Failed to load notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": rows, "count": len(rows)})
}
