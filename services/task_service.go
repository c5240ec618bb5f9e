package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/metrics"
	"github.com/taskizy-api/models"
	"github.com/taskizy-api/repositories"
	"github.com/taskizy-api/utils"
	"gorm.io/gorm"
)

// TaskPage is one page of a task listing
type TaskPage struct {
	Tasks      []models.Task
	Count      int64
	Page       int
	TotalPages int
}

// HasNext reports whether a later page exists
func (p *TaskPage) HasNext() bool { return p.Page < p.TotalPages }

// HasPrevious reports whether an earlier page exists
func (p *TaskPage) HasPrevious() bool { return p.Page > 1 }

// CreateTaskInput holds the data for a new task
type CreateTaskInput struct {
	Description string
	IsUrgent    bool
	TaskerID    *uint
	CreatorID   uint
	RoomID      uint
}

// TaskPatch is a partial task update; nil fields are left unchanged
type TaskPatch struct {
	Description *string
	IsUrgent    *bool
	IsCompleted *bool
	TaskerID    *uint
}

// TaskService handles tasks scoped to rooms
type TaskService struct {
	db          *gorm.DB
	coordinator *MembershipCoordinator
	pageSize    int
	log         zerolog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(db *gorm.DB, coordinator *MembershipCoordinator, pageSize int, log zerolog.Logger) *TaskService {
	return &TaskService{db: db, coordinator: coordinator, pageSize: pageSize, log: log}
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", NewValidationError("description", "This field may not be blank.")
	}
	if utf8.RuneCountInString(description) > models.TaskDescriptionMaxLength {
		return "", NewValidationError("description", "Ensure this field has no more than 100 characters.")
	}
	return description, nil
}

// CreateTask creates a task in a room. Creator and tasker must both be members.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	description, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}
	if in.TaskerID == nil {
		return nil, NewValidationError("tasker", "This field is required.")
	}

	task := models.Task{
		Description: description,
		IsUrgent:    in.IsUrgent,
		CreatorID:   &in.CreatorID,
		TaskerID:    in.TaskerID,
		RoomID:      in.RoomID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repositories.NewRoomRepository(tx).FindByIDForShare(ctx, in.RoomID); err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		if _, err := repositories.NewUserRepository(tx).FindByID(ctx, *in.TaskerID); err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}

		if err := s.coordinator.RequireMember(ctx, tx, in.RoomID, in.CreatorID, "creator"); err != nil {
			return err
		}
		if err := s.coordinator.RequireMember(ctx, tx, in.RoomID, *in.TaskerID, "tasker"); err != nil {
			return err
		}

		return repositories.NewTaskRepository(tx).Create(ctx, &task)
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksCreated.Inc()
	s.log.Info().Uint("task_id", task.ID).Uint("room_id", in.RoomID).Msg("task created")

	return s.GetTask(ctx, in.RoomID, task.ID)
}

// ListRoomTasks lists one page of the room's tasks
func (s *TaskService) ListRoomTasks(ctx context.Context, roomID uint, filter dto.TaskFilter, page int) (*TaskPage, error) {
	exists, err := repositories.NewRoomRepository(s.db).Exists(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRoomNotFound
	}
	return listTasks(ctx, s.db, repositories.TaskScope{RoomID: &roomID}, filter, page, s.pageSize)
}

// ListUserTasks lists one page of the tasks assigned to pathUserID. Callers
// may only list their own tasks.
func (s *TaskService) ListUserTasks(ctx context.Context, callerID, pathUserID uint, filter dto.TaskFilter, page int) (*TaskPage, error) {
	if callerID != pathUserID {
		return nil, ErrForbidden
	}
	if _, err := repositories.NewUserRepository(s.db).FindByID(ctx, pathUserID); err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return listTasks(ctx, s.db, repositories.TaskScope{TaskerID: &pathUserID}, filter, page, s.pageSize)
}

// GetTask loads a task of the room
func (s *TaskService) GetTask(ctx context.Context, roomID, taskID uint) (*models.Task, error) {
	task, err := repositories.NewTaskRepository(s.db).FindInRoom(ctx, roomID, taskID)
	if err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}
	return task, nil
}

// UpdateTask applies a partial update. A new tasker must be a room member.
func (s *TaskService) UpdateTask(ctx context.Context, roomID, taskID uint, patch TaskPatch) (*models.Task, error) {
	var completed bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repositories.NewTaskRepository(tx)
		task, err := tasks.FindInRoom(ctx, roomID, taskID)
		if err != nil {
			return notFoundAs(err, ErrTaskNotFound)
		}

		fields := map[string]interface{}{}
		if patch.Description != nil {
			description, err := validateDescription(*patch.Description)
			if err != nil {
				return err
			}
			fields["description"] = description
		}
		if patch.IsUrgent != nil {
			fields["is_urgent"] = *patch.IsUrgent
		}
		if patch.IsCompleted != nil {
			fields["is_completed"] = *patch.IsCompleted
			completed = *patch.IsCompleted && !task.IsCompleted
		}
		if patch.TaskerID != nil {
			if _, err := repositories.NewUserRepository(tx).FindByID(ctx, *patch.TaskerID); err != nil {
				return notFoundAs(err, ErrUserNotFound)
			}
			if err := s.coordinator.RequireMember(ctx, tx, roomID, *patch.TaskerID, "tasker"); err != nil {
				return err
			}
			fields["tasker_id"] = *patch.TaskerID
		}

		return tasks.UpdateFields(ctx, task.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	if completed {
		metrics.TasksCompleted.Inc()
	}
	return s.GetTask(ctx, roomID, taskID)
}

// DeleteTask deletes a task of the room
func (s *TaskService) DeleteTask(ctx context.Context, roomID, taskID uint) error {
	deleted, err := repositories.NewTaskRepository(s.db).Delete(ctx, roomID, taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	s.log.Info().Uint("task_id", taskID).Uint("room_id", roomID).Msg("task deleted")
	return nil
}

func listTasks(ctx context.Context, db *gorm.DB, scope repositories.TaskScope, filter dto.TaskFilter, page, pageSize int) (*TaskPage, error) {
	if page < 1 {
		return nil, ErrPageNotFound
	}

	tasks, count, err := repositories.NewTaskRepository(db).FindWithPagination(ctx, scope, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := utils.TotalPages(count, pageSize)
	if page > totalPages {
		return nil, ErrPageNotFound
	}

	return &TaskPage{
		Tasks:      tasks,
		Count:      count,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}
