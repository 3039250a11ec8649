package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
	"github.com/corvid-labs/taskline-backend/internal/pkg/logger"
	"github.com/corvid-labs/taskline-backend/internal/services"
)

// TaskHandler adapts HTTP requests to the task service. It owns request
// shape only; every status decision is delegated to RespondError.
type TaskHandler struct {
	taskService services.TaskService
	log         *logger.Logger
}

func NewTaskHandler(taskService services.TaskService, baseLog *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         baseLog.With("handler", "TaskHandler"),
	}
}

type createTaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type updateTaskRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

// POST /api/v1/tasks
func (th *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := BindJSON(c, &req); err != nil {
		RespondError(c, th.log, err)
		return
	}

	out, err := th.taskService.Create(c.Request.Context(), services.CreateTaskInput{Title: req.Title})
	if err != nil {
		RespondError(c, th.log, err)
		return
	}
	RespondCreated(c, out)
}

// GET /api/v1/tasks/:id
func (th *TaskHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondError(c, th.log, err)
		return
	}

	out, err := th.taskService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, th.log, err)
		return
	}
	RespondOK(c, out)
}

// GET /api/v1/tasks?status=open
func (th *TaskHandler) List(c *gin.Context) {
	var input services.ListTasksInput
	if s := c.Query("status"); s != "" {
		input.Status = &s
	}

	out, err := th.taskService.List(c.Request.Context(), input)
	if err != nil {
		RespondError(c, th.log, err)
		return
	}
	RespondOK(c, gin.H{"tasks": out})
}

// PATCH /api/v1/tasks/:id
func (th *TaskHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondError(c, th.log, err)
		return
	}

	var req updateTaskRequest
	if err := BindJSON(c, &req); err != nil {
		RespondError(c, th.log, err)
		return
	}

	out, err := th.taskService.Update(c.Request.Context(), services.UpdateTaskInput{
		TaskID: id,
		Title:  req.Title,
		Status: req.Status,
	})
	if err != nil {
		RespondError(c, th.log, err)
		return
	}
	RespondOK(c, out)
}

// DELETE /api/v1/tasks/:id
func (th *TaskHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondError(c, th.log, err)
		return
	}

	if err := th.taskService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, th.log, err)
		return
	}
	RespondNoContent(c)
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewInterfaceValidation("id", "id must be a valid UUID")
	}
	return id, nil
}
