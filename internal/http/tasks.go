package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/tasks"
)

// TasksController lets staff trigger scheduled jobs and poll their status.
type TasksController struct {
	jobs   JobRunner
	status TaskStatusReader
}

func NewTasksController(jobs JobRunner, status TaskStatusReader) *TasksController {
	return &TasksController{jobs: jobs, status: status}
}

func (tc *TasksController) RegisterRoutes(admin gin.IRouter) {
	admin.POST("/tasks/contract-reminders", tc.run(tasks.ContractRemindersQueue))
	admin.POST("/tasks/notification-cleanup", tc.run(tasks.CleanupNotificationsQueue))
	admin.GET("/tasks/:id", tc.Status)
}

func (tc *TasksController) run(job string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := tc.jobs.RunNow(job)
		if err != nil {
			respondInternalError(c, "Failed to enqueue task", err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"success": true,
			"message": "Task enqueued",
			"task_id": id,
			"type":    job,
		})
	}
}

// Status handles GET /api/admin/tasks/:id
func (tc *TasksController) Status(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.status.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, "Failed to load task status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      taskID,
		"status":  tasks.StatusName(status),
	})
}
