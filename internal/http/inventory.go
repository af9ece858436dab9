package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/inventory"
)

type InventoryController struct {
	store InventoryStore
}

func NewInventoryController(store InventoryStore) *InventoryController {
	return &InventoryController{store: store}
}

func (ic *InventoryController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/inventory", ic.Report)
}

func (ic *InventoryController) RegisterStaffRoutes(staff gin.IRouter) {
	staff.GET("/inventory", ic.List)
}

type inventoryQuery struct {
	pageQuery
	LowStock bool   `form:"low_stock"`
	Category string `form:"category"`
	Format   string `form:"format"`
}

func (q inventoryQuery) filter() inventory.ListFilter {
	return inventory.ListFilter{LowStock: q.LowStock, Category: q.Category, Format: q.Format}
}

// Report handles GET /api/admin/inventory
func (ic *InventoryController) Report(c *gin.Context) {
	ic.respond(c, "inventory", "Failed to load inventory")
}

// List handles GET /api/inventory
func (ic *InventoryController) List(c *gin.Context) {
	ic.respond(c, "data", "Failed to load inventory")
}

func (ic *InventoryController) respond(c *gin.Context, key, failure string) {
	var q inventoryQuery
	if !bindQuery(c, &q) {
		return
	}

	ctx := c.Request.Context()
	rows, page, err := ic.store.List(ctx, q.filter(), q.request())
	if err != nil {
		respondInternalError(c, failure, err)
		return
	}
	summary, err := ic.store.Summary(ctx)
	if err != nil {
		respondInternalError(c, failure, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, key: rows, "summary": summary, "pagination": page})
}
