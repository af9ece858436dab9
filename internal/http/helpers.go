package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database"
)

// --- Response Helpers ---

// fail sends the {"success": false, "message": ...} envelope.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func respondBadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

func respondNotFound(c *gin.Context, resource string) {
	fail(c, http.StatusNotFound, resource+" not found")
}

// respondInternalError logs the error and sends a 500 response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, message string, err error) {
	log.Printf("Internal error (%s %s): %s: %v", c.Request.Method, c.FullPath(), message, err)
	fail(c, http.StatusInternalServerError, message)
}

// respondSuccess sends {"success": true, "message": ...} plus any extra fields.
func respondSuccess(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// --- Parameter Parsing ---

// parseIDParam extracts a positive integer id from the URL.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid "+paramName)
		return 0, false
	}
	return id, true
}

// pageQuery is embedded in list query structs.
type pageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (q pageQuery) request() database.PageRequest {
	return database.NewPageRequest(q.Page, q.Limit)
}

// bindQuery binds query parameters into dst, answering 400 on malformed input.
func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		respondBadRequest(c, "Invalid query parameters")
		return false
	}
	return true
}

// bindJSON binds the request body into dst, answering 400 on malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBadRequest(c, "Invalid request body")
		return false
	}
	return true
}
