package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/contracts"
)

type ContractsController struct {
	store ContractStore
}

func NewContractsController(store ContractStore) *ContractsController {
	return &ContractsController{store: store}
}

func (cc *ContractsController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/contracts", cc.List)
	admin.POST("/contracts", cc.Create)
}

type contractListQuery struct {
	pageQuery
	Status   string `form:"status"`
	Type     string `form:"type"`
	AuthorID int64  `form:"author_id"`
}

// List handles GET /api/admin/contracts
func (cc *ContractsController) List(c *gin.Context) {
	var q contractListQuery
	if !bindQuery(c, &q) {
		return
	}

	rows, err := cc.store.List(c.Request.Context(),
		contracts.ListFilter{Status: q.Status, Type: q.Type, AuthorID: q.AuthorID}, q.request())
	if err != nil {
		respondInternalError(c, "Failed to load contracts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "contracts": rows})
}

// Create handles POST /api/admin/contracts
func (cc *ContractsController) Create(c *gin.Context) {
	var req contracts.NewContract
	if !bindJSON(c, &req) {
		return
	}
	if req.BookID <= 0 || req.AuthorID <= 0 {
		respondBadRequest(c, "book_id and author_id are required")
		return
	}

	id, number, err := cc.store.Create(c.Request.Context(), req)
	if err != nil {
		respondInternalError(c, "Failed to create contract", err)
		return
	}
	respondSuccess(c, "Contract created successfully", gin.H{
		"contract_id":     id,
		"contract_number": number,
	})
}
