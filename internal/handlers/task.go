package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/middleware"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns every task (admin)
func (h *TaskHandler) ListTasks(c *gin.Context) {
	h.list(c, nil)
}

// ListDailyTasks returns the DAILY tasks
func (h *TaskHandler) ListDailyTasks(c *gin.Context) {
	taskType := models.TaskTypeDaily
	h.list(c, &taskType)
}

// ListOnceTasks returns the ONCE tasks
func (h *TaskHandler) ListOnceTasks(c *gin.Context) {
	taskType := models.TaskTypeOnce
	h.list(c, &taskType)
}

func (h *TaskHandler) list(c *gin.Context, taskType *models.TaskType) {
	tasks, err := h.taskService.ListTasks(c.Request.Context(), taskType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskListResponse{Tasks: tasks})
}

// GetTask returns a specific task by ID
// Task is already loaded by the LoadTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.TaskInput{
		Title:       req.Title,
		CTA:         req.CTA,
		Description: req.Description,
		Link:        req.Link,
		Image:       req.Image,
		Platform:    req.Platform,
		Type:        req.Type,
		SubmitType:  req.SubmitType,
		Points:      req.Points,
		CheckFor:    req.CheckFor,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	var req dto.TaskPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, services.TaskPatch{
		Title:       req.Title,
		CTA:         req.CTA,
		Description: req.Description,
		Link:        req.Link,
		Image:       req.Image,
		Platform:    req.Platform,
		Type:        req.Type,
		SubmitType:  req.SubmitType,
		Points:      req.Points,
		CheckFor:    req.CheckFor,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteTask deletes a task along with its completion records and submissions
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
