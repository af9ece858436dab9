package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/authors"
)

type AuthorsController struct {
	store AuthorStore
}

func NewAuthorsController(store AuthorStore) *AuthorsController {
	return &AuthorsController{store: store}
}

func (ac *AuthorsController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/authors", ac.List)
	admin.GET("/authors/:id", ac.Get)
	admin.PUT("/authors/:id/status", ac.UpdateStatus)
}

type authorListQuery struct {
	pageQuery
	Status  string `form:"status"`
	Faculty string `form:"faculty"`
	Search  string `form:"search"`
}

// List handles GET /api/admin/authors
func (ac *AuthorsController) List(c *gin.Context) {
	var q authorListQuery
	if !bindQuery(c, &q) {
		return
	}

	rows, pagination, err := ac.store.List(c.Request.Context(),
		authors.ListFilter{Status: q.Status, Faculty: q.Faculty, Search: q.Search}, q.request())
	if err != nil {
		respondInternalError(c, "Failed to load authors", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "authors": rows, "pagination": pagination})
}

// Get handles GET /api/admin/authors/:id
func (ac *AuthorsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.store.GetByID(c.Request.Context(), id)
	if errors.Is(err, authors.ErrAuthorNotFound) {
		respondNotFound(c, "Author")
		return
	}
	if err != nil {
		respondInternalError(c, "Failed to load author details", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "author": author})
}

type statusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// UpdateStatus handles PUT /api/admin/authors/:id/status. The linked
// account status follows the author status.
func (ac *AuthorsController) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	err := ac.store.UpdateStatus(c.Request.Context(), id, req.Status)
	switch {
	case errors.Is(err, authors.ErrInvalidStatus):
		respondBadRequest(c, "Invalid status")
	case errors.Is(err, authors.ErrAuthorNotFound):
		respondNotFound(c, "Author")
	case errors.Is(err, authors.ErrLinkedUserNotFound):
		fail(c, http.StatusNotFound, "Linked user account not found")
	case err != nil:
		respondInternalError(c, "Failed to update author status", err)
	default:
		respondSuccess(c, "Author "+req.Status+" successfully", nil)
	}
}
