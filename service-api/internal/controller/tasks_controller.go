package controller

import (
	"errors"
	"net/http"

	"deovr-bridge/pkg/model"
	"deovr-bridge/pkg/progress"
	"deovr-bridge/service-api/internal/service/tasks"

	"github.com/gin-gonic/gin"
)

// TasksController exposes the admin surface for the batch tasks.
type TasksController struct {
	runner *tasks.Runner
}

// NewTasksController creates a new tasks controller
func NewTasksController(runner *tasks.Runner) *TasksController {
	return &TasksController{runner: runner}
}

// TriggerGeneration handles POST /api/v1/tasks/generation?force=true
func (tc *TasksController) TriggerGeneration(c *gin.Context) {
	force := c.Query("force") == "true"

	if err := tc.runner.TriggerGeneration(force); err != nil {
		if errors.Is(err, tasks.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "generation is already running"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start generation"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task": model.TaskGeneration, "status": model.TaskRunning})
}

// TriggerCleanup handles POST /api/v1/tasks/cleanup
func (tc *TasksController) TriggerCleanup(c *gin.Context) {
	if err := tc.runner.TriggerCleanup(); err != nil {
		if errors.Is(err, tasks.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "cleanup is already running"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start cleanup"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task": model.TaskCleanup, "status": model.TaskRunning})
}

// GetTask handles GET /api/v1/tasks/{name}
func (tc *TasksController) GetTask(c *gin.Context) {
	state, err := tc.runner.Status(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, progress.ErrUnknownTask) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read task state"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// CancelTask handles DELETE /api/v1/tasks/{name}
func (tc *TasksController) CancelTask(c *gin.Context) {
	if !tc.runner.Cancel(c.Param("name")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task is not running"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task": c.Param("name"), "status": model.TaskCanceled})
}
