package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/auth"
)

type DashboardController struct {
	store DashboardStore
}

func NewDashboardController(store DashboardStore) *DashboardController {
	return &DashboardController{store: store}
}

func (dc *DashboardController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/health", dc.AdminHealth)
	admin.GET("/dashboard/stats", dc.Stats)
}

// AdminHealth handles GET /api/admin/health and echoes the caller.
func (dc *DashboardController) AdminHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Admin panel is accessible",
		"user":      auth.GetSession(c),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats handles GET /api/admin/dashboard/stats
func (dc *DashboardController) Stats(c *gin.Context) {
	stats, err := dc.store.Stats(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to load dashboard statistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats.Stats,
		"recent":  stats.Recent,
		"charts":  stats.Charts,
	})
}
