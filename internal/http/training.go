package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/training"
)

type TrainingController struct {
	store TrainingStore
}

func NewTrainingController(store TrainingStore) *TrainingController {
	return &TrainingController{store: store}
}

func (tc *TrainingController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/training", tc.List)
	admin.PUT("/training/:id", tc.Update)
}

// RegisterStaffRoutes exposes the registration list under /api.
func (tc *TrainingController) RegisterStaffRoutes(staff gin.IRouter) {
	staff.GET("/training", tc.List)
}

type trainingListQuery struct {
	pageQuery
	Status string `form:"status"`
	Type   string `form:"type"`
	Mode   string `form:"mode"`
}

// List handles GET /api/admin/training and GET /api/training
func (tc *TrainingController) List(c *gin.Context) {
	var q trainingListQuery
	if !bindQuery(c, &q) {
		return
	}

	rows, err := tc.store.List(c.Request.Context(),
		training.ListFilter{Status: q.Status, Type: q.Type, Mode: q.Mode}, q.request())
	if err != nil {
		respondInternalError(c, "Failed to load training registrations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "registrations": rows})
}

// Update handles PUT /api/admin/training/:id
func (tc *TrainingController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req training.Outcome
	if !bindJSON(c, &req) {
		return
	}

	err := tc.store.UpdateOutcome(c.Request.Context(), id, req)
	if errors.Is(err, training.ErrRegistrationNotFound) {
		respondNotFound(c, "Registration")
		return
	}
	if err != nil {
		respondInternalError(c, "Failed to update training", err)
		return
	}
	respondSuccess(c, "Training registration updated successfully", nil)
}
