package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/submissions"
)

type SubmissionsController struct {
	store SubmissionStore
}

func NewSubmissionsController(store SubmissionStore) *SubmissionsController {
	return &SubmissionsController{store: store}
}

func (sc *SubmissionsController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/submissions", sc.List)
	admin.POST("/submissions/:id/assign", sc.Assign)
}

type submissionListQuery struct {
	pageQuery
	Status   string `form:"status"`
	Type     string `form:"type"`
	Priority string `form:"priority"`
}

// List handles GET /api/admin/submissions
func (sc *SubmissionsController) List(c *gin.Context) {
	var q submissionListQuery
	if !bindQuery(c, &q) {
		return
	}

	rows, pagination, err := sc.store.List(c.Request.Context(),
		submissions.ListFilter{Status: q.Status, Type: q.Type, Priority: q.Priority}, q.request())
	if err != nil {
		respondInternalError(c, "Failed to load submissions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submissions": rows, "pagination": pagination})
}

type assignRequest struct {
	ReviewerID int64  `json:"reviewer_id"`
	DueDate    string `json:"due_date"`
	Priority   string `json:"priority"`
}

// Assign handles POST /api/admin/submissions/:id/assign
func (sc *SubmissionsController) Assign(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if !bindJSON(c, &req) {
		return
	}

	err := sc.store.Assign(c.Request.Context(), id, submissions.Assignment(req))
	if errors.Is(err, submissions.ErrSubmissionNotFound) {
		respondNotFound(c, "Submission")
		return
	}
	if err != nil {
		respondInternalError(c, "Failed to assign submission", err)
		return
	}
	respondSuccess(c, "Submission assigned successfully", nil)
}
