package dto

import (
	"github.com/taskizy-api/models"
)

// TaskFilter holds the optional task list filters
type TaskFilter struct {
	CreatorID   *uint
	TaskerID    *uint
	IsCompleted *bool
}

// CreateTaskRequest is the payload for creating a task in a room
type CreateTaskRequest struct {
	Description string   `json:"description"`
	Tasker      *FlexID  `json:"tasker"`
	IsUrgent    FlexBool `json:"is_urgent"`
}

// UpdateTaskRequest is a partial task update
type UpdateTaskRequest struct {
	Description *string   `json:"description"`
	IsUrgent    *FlexBool `json:"is_urgent"`
	IsCompleted *FlexBool `json:"is_completed"`
	Tasker      *FlexID   `json:"tasker"`
}

// TaskResponse is the serialized form of a task
type TaskResponse struct {
	TaskID      uint         `json:"task_id"`
	Description string       `json:"description"`
	IsUrgent    bool         `json:"is_urgent"`
	IsCompleted bool         `json:"is_completed"`
	Creator     *models.User `json:"creator"`
	Tasker      *models.User `json:"tasker"`
	RoomID      uint         `json:"room_id"`
	Room        string       `json:"room"`
	RoomSlug    string       `json:"room_slug"`
}

// NewTaskResponse builds a TaskResponse; Room should be preloaded
func NewTaskResponse(task models.Task) TaskResponse {
	resp := TaskResponse{
		TaskID:      task.ID,
		Description: task.Description,
		IsUrgent:    task.IsUrgent,
		IsCompleted: task.IsCompleted,
		Creator:     task.Creator,
		Tasker:      task.Tasker,
		RoomID:      task.RoomID,
	}
	if task.Room != nil {
		resp.Room = task.Room.Name
		resp.RoomSlug = task.Room.Slug
	}
	return resp
}

// NewTaskResponses maps a slice of tasks
func NewTaskResponses(tasks []models.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

// TaskPageResults is the "results" object of a paginated task listing
type TaskPageResults struct {
	RoomData   *RoomDetail    `json:"room_data,omitempty"`
	Tasks      []TaskResponse `json:"tasks"`
	TotalPages int            `json:"total_pages"`
}

// PaginatedTasksResponse is the page-number pagination envelope
type PaginatedTasksResponse struct {
	Count    int64           `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  TaskPageResults `json:"results"`
}
