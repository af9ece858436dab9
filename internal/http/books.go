package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/books"
)

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

func (bc *BooksController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/books", bc.List)
	admin.GET("/books/:id", bc.Get)
	admin.PUT("/books/:id/status", bc.UpdateStatus)
}

type bookListQuery struct {
	pageQuery
	Status   string `form:"status"`
	Category string `form:"category"`
	AuthorID int64  `form:"author_id"`
	Format   string `form:"format"`
	Year     int    `form:"year"`
	Search   string `form:"search"`
}

// List handles GET /api/admin/books
func (bc *BooksController) List(c *gin.Context) {
	var q bookListQuery
	if !bindQuery(c, &q) {
		return
	}

	rows, pagination, err := bc.store.List(c.Request.Context(), books.ListFilter{
		Status:   q.Status,
		Category: q.Category,
		AuthorID: q.AuthorID,
		Format:   q.Format,
		Year:     q.Year,
		Search:   q.Search,
	}, q.request())
	if err != nil {
		respondInternalError(c, "Failed to load books", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "books": rows, "pagination": pagination})
}

// Get handles GET /api/admin/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetByID(c.Request.Context(), id)
	if errors.Is(err, books.ErrBookNotFound) {
		respondNotFound(c, "Book")
		return
	}
	if err != nil {
		respondInternalError(c, "Failed to load book details", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "book": book})
}

// UpdateStatus handles PUT /api/admin/books/:id/status. Omitted notes keep
// the current editor notes.
func (bc *BooksController) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	err := bc.store.UpdateStatus(c.Request.Context(), id, req.Status, req.Notes)
	switch {
	case errors.Is(err, books.ErrInvalidStatus):
		respondBadRequest(c, "Invalid status")
	case errors.Is(err, books.ErrBookNotFound):
		respondNotFound(c, "Book")
	case err != nil:
		respondInternalError(c, "Failed to update book status", err)
	default:
		respondSuccess(c, "Book status updated to "+req.Status, nil)
	}
}
