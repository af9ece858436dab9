package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/sales"
)

type SalesController struct {
	store SalesStore
}

func NewSalesController(store SalesStore) *SalesController {
	return &SalesController{store: store}
}

func (sc *SalesController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/sales", sc.Report)
}

// RegisterStaffRoutes mounts the sales ledger under /api.
func (sc *SalesController) RegisterStaffRoutes(staff gin.IRouter) {
	staff.GET("/sales", sc.List)
}

type salesQuery struct {
	pageQuery
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	Format        string `form:"format"`
	CustomerType  string `form:"customer_type"`
	PaymentStatus string `form:"payment_status"`
	BookID        int64  `form:"book_id"`
}

func (q salesQuery) filter() sales.ListFilter {
	return sales.ListFilter{
		StartDate:     q.StartDate,
		EndDate:       q.EndDate,
		Format:        q.Format,
		CustomerType:  q.CustomerType,
		PaymentStatus: q.PaymentStatus,
		BookID:        q.BookID,
	}
}

// Report handles GET /api/admin/sales
func (sc *SalesController) Report(c *gin.Context) {
	var q salesQuery
	if !bindQuery(c, &q) {
		return
	}

	ctx := c.Request.Context()
	rows, _, err := sc.store.List(ctx, q.filter(), q.request())
	if err != nil {
		respondInternalError(c, "Failed to load sales data", err)
		return
	}
	summary, err := sc.store.Summary(ctx, q.filter())
	if err != nil {
		respondInternalError(c, "Failed to load sales data", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sales": rows, "summary": summary})
}

// List handles GET /api/sales with the 30-day summary.
func (sc *SalesController) List(c *gin.Context) {
	var q salesQuery
	if !bindQuery(c, &q) {
		return
	}

	ctx := c.Request.Context()
	rows, page, err := sc.store.List(ctx, q.filter(), q.request())
	if err != nil {
		respondInternalError(c, "Failed to load sales", err)
		return
	}
	summary, err := sc.store.RecentSummary(ctx)
	if err != nil {
		respondInternalError(c, "Failed to load sales", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows, "summary": summary, "pagination": page})
}
