package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/constants"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/services"
)

// TaskFinder loads a task by id.
type TaskFinder interface {
	GetTask(ctx context.Context, taskID uint64) (*models.Task, error)
}

// LoadTask resolves the :id parameter to a task and stores it in the context.
// Must run after RequireAdmin.
func LoadTask(tasks TaskFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
				return
			}
			apierrors.InternalError(c, err)
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask returns the task stored by LoadTask
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}
