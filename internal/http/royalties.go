package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/royalties"
)

type RoyaltiesController struct {
	store RoyaltyStore
}

func NewRoyaltiesController(store RoyaltyStore) *RoyaltiesController {
	return &RoyaltiesController{store: store}
}

func (rc *RoyaltiesController) RegisterStaffRoutes(staff gin.IRouter) {
	staff.GET("/royalties", rc.List)
}

type royaltyQuery struct {
	pageQuery
	Status      string `form:"status"`
	PeriodStart string `form:"period_start"`
	PeriodEnd   string `form:"period_end"`
	AuthorID    int64  `form:"author_id"`
}

// List handles GET /api/royalties
func (rc *RoyaltiesController) List(c *gin.Context) {
	var q royaltyQuery
	if !bindQuery(c, &q) {
		return
	}

	rows, page, err := rc.store.List(c.Request.Context(), royalties.ListFilter{
		Status:      q.Status,
		PeriodStart: q.PeriodStart,
		PeriodEnd:   q.PeriodEnd,
		AuthorID:    q.AuthorID,
	}, q.request())
	if err != nil {
		respondInternalError(c, "Failed to load royalties", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows, "pagination": page})
}
