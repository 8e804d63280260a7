package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"household-planner/internal/model"
	"household-planner/internal/service"
)

type createTaskRequest struct {
	Description string `json:"description" binding:"required,max=500"`
	DueDate     string `json:"due_date"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

type updateTaskRequest struct {
	Description string `json:"description" binding:"required,max=500"`
}

type completeTaskResponse struct {
	Task         model.Task `json:"task"`
	StarsAwarded int        `json:"stars_awarded"`
	Stars        int        `json:"stars"`
}

func (h *Handler) HandleGetTasks(c *gin.Context) {
	tasks, err := h.svc.Tasks.ListTasks(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	h.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.svc.Tasks.CreateTask(c.Request.Context(), c.Param("name"), service.TaskInput{
		Description: req.Description,
		DueDate:     req.DueDate,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		h.fail(c, err, "failed to create task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) HandleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.svc.Tasks.UpdateDescription(c.Request.Context(), c.Param("name"), c.Param("id"), req.Description)
	if err != nil {
		h.fail(c, err, "failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) HandleDeleteTask(c *gin.Context) {
	if err := h.svc.Tasks.DeleteTask(c.Request.Context(), c.Param("name"), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) HandleCompleteTask(c *gin.Context) {
	done, err := h.svc.Tasks.CompleteTask(c.Request.Context(), c.Param("name"), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to complete task")
		return
	}
	c.JSON(http.StatusOK, completeTaskResponse{
		Task:         done.Task,
		StarsAwarded: done.StarsAwarded,
		Stars:        done.Balance,
	})
}
