package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/production"
)

type ProductionController struct {
	store ProductionStore
}

func NewProductionController(store ProductionStore) *ProductionController {
	return &ProductionController{store: store}
}

func (pc *ProductionController) RegisterStaffRoutes(staff gin.IRouter) {
	staff.GET("/production", pc.List)
}

type productionQuery struct {
	pageQuery
	Status string `form:"status"`
	Stage  string `form:"stage"`
	BookID int64  `form:"book_id"`
}

// List handles GET /api/production
func (pc *ProductionController) List(c *gin.Context) {
	var q productionQuery
	if !bindQuery(c, &q) {
		return
	}

	rows, page, err := pc.store.List(c.Request.Context(),
		production.ListFilter{Status: q.Status, Stage: q.Stage, BookID: q.BookID}, q.request())
	if err != nil {
		respondInternalError(c, "Failed to load production tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows, "pagination": page})
}
