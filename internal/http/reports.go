package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/reports"
)

type ReportsController struct {
	reports ReportStore
	search  SearchStore
}

func NewReportsController(reports ReportStore, search SearchStore) *ReportsController {
	return &ReportsController{reports: reports, search: search}
}

func (rc *ReportsController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/reports/financial", rc.Financial)
	admin.GET("/filters", rc.Filters)
	admin.GET("/search", rc.Search)
}

type financialQuery struct {
	Year  int `form:"year"`
	Month int `form:"month"`
}

// Financial handles GET /api/admin/reports/financial
func (rc *ReportsController) Financial(c *gin.Context) {
	var q financialQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.Month < 0 || q.Month > 12 || q.Year < 0 {
		respondBadRequest(c, "Invalid report period")
		return
	}

	report, err := rc.reports.Financial(c.Request.Context(), reports.FinancialFilter{Year: q.Year, Month: q.Month})
	if err != nil {
		respondInternalError(c, "Failed to generate financial report", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

// Filters handles GET /api/admin/filters
func (rc *ReportsController) Filters(c *gin.Context) {
	filters, err := rc.search.Filters(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to load filters", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "filters": filters})
}

// Search handles GET /api/admin/search?q=
func (rc *ReportsController) Search(c *gin.Context) {
	results, err := rc.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondInternalError(c, "Search failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}
