package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/middleware"
	"github.com/taskizy-api/services"
	"github.com/taskizy-api/utils"
)

// TaskController handles task endpoints
type TaskController struct {
	taskService *services.TaskService
}

// NewTaskController creates a new task controller
func NewTaskController(taskService *services.TaskService) *TaskController {
	return &TaskController{taskService: taskService}
}

// ListRoomTasks lists one page of the room's tasks
func (tc *TaskController) ListRoomTasks(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	filter, err := parseTaskFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	tasks, err := tc.taskService.ListRoomTasks(c.Request.Context(), room.ID, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedTasks(c, tasks, nil))
}

// CreateTask godoc
// @Summary Create a task in a room
// @Tags tasks
// @Accept json
// @Produce json
// @Param room_id path int true "Room ID"
// @Param request body dto.CreateTaskRequest true "Task"
// @Success 201 {object} dto.TaskResponse
// @Router /task/room/{room_id}/create/ [post]
func (tc *TaskController) CreateTask(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)
	userID, _ := middleware.GetCurrentUserID(c)

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := services.CreateTaskInput{
		Description: req.Description,
		IsUrgent:    bool(req.IsUrgent),
		CreatorID:   userID,
		RoomID:      room.ID,
	}
	if req.Tasker != nil {
		in.TaskerID = utils.UintPtr(uint(*req.Tasker))
	}

	task, err := tc.taskService.CreateTask(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTaskResponse(*task))
}

// GetTask returns a single task of the room
func (tc *TaskController) GetTask(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	taskID, err := uintParam(c, "task_id")
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := tc.taskService.GetTask(c.Request.Context(), room.ID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTaskResponse(*task))
}

// UpdateTask applies a partial update; also serves mark-done
func (tc *TaskController) UpdateTask(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	taskID, err := uintParam(c, "task_id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	patch := services.TaskPatch{Description: req.Description}
	if req.IsUrgent != nil {
		patch.IsUrgent = utils.BoolPtr(bool(*req.IsUrgent))
	}
	if req.IsCompleted != nil {
		patch.IsCompleted = utils.BoolPtr(bool(*req.IsCompleted))
	}
	if req.Tasker != nil {
		patch.TaskerID = utils.UintPtr(uint(*req.Tasker))
	}

	task, err := tc.taskService.UpdateTask(c.Request.Context(), room.ID, taskID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTaskResponse(*task))
}

// DeleteTask deletes a task of the room
func (tc *TaskController) DeleteTask(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	taskID, err := uintParam(c, "task_id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := tc.taskService.DeleteTask(c.Request.Context(), room.ID, taskID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUserTasks lists one page of the tasks assigned to the caller
func (tc *TaskController) ListUserTasks(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	pathUserID, err := uintParam(c, "user_id")
	if err != nil {
		respondError(c, err)
		return
	}

	filter, err := parseTaskFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	tasks, err := tc.taskService.ListUserTasks(c.Request.Context(), userID, pathUserID, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedTasks(c, tasks, nil))
}
