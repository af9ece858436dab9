package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/dialect"
)

const healthCheckTimeout = 5 * time.Second

var errDatabaseNotConfigured = errors.New("database not configured")

type HealthController struct {
	db           *database.Adapter
	databaseName string
	version      string
	environment  string
	started      time.Time
}

func NewHealthController(db *database.Adapter, databaseName, version, environment string) *HealthController {
	if environment == "" {
		environment = "development"
	}
	return &HealthController{
		db:           db,
		databaseName: databaseName,
		version:      version,
		environment:  environment,
		started:      time.Now(),
	}
}

func (h *HealthController) query(c *gin.Context, sql string) ([]database.Row, error) {
	if h.db == nil {
		return nil, errDatabaseNotConfigured
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()
	return h.db.QueryRows(ctx, sql)
}

// SystemStatus handles GET /api/system/health and reports each component.
func (h *HealthController) SystemStatus(c *gin.Context) {
	now := time.Now().UTC().Format(time.RFC3339)

	rows, err := h.query(c, "SELECT 1 as connected")
	if err != nil {
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{
			"success":     false,
			"timestamp":   now,
			"status":      "degraded",
			"error":       err.Error(),
			"environment": h.environment,
		})
		return
	}

	dbState := "disconnected"
	if len(rows) > 0 && rows[0].Int("connected") == 1 {
		dbState = "connected"
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": now,
		"status":    "operational",
		"components": gin.H{
			"database":       dbState,
			"authentication": "ready",
			"file_uploads":   "ready",
			"session":        "active",
		},
		"environment": h.environment,
		"version":     h.version,
	})
}

// Status handles GET /api/health.
func (h *HealthController) Status(c *gin.Context) {
	if _, err := h.query(c, "SELECT 1"); err != nil {
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Database query failed",
			"error":   err.Error(),
		})
		return
	}

	client := h.db.Engine()
	name := h.databaseName
	if client == dialect.Postgres {
		name = "postgres"
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Server is healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  name,
		"client":    client.String(),
		"uptime":    time.Since(h.started).Seconds(),
	})
}

// Ping handles GET /ping.
func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
