package repositories

import (
	"context"
	"fmt"

	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/models"
	"github.com/taskizy-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository bound to db (or a transaction)
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindInRoom retrieves a task of the room with its creator, tasker and room loaded
func (r *TaskRepository) FindInRoom(ctx context.Context, roomID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Tasker").
		Preload("Room").
		Where("id = ? AND room_id = ?", taskID, roomID).
		First(&task).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find task %d in room %d: %w", taskID, roomID, err)
	}
	return &task, nil
}

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpdateFields applies a partial update to a task
func (r *TaskRepository) UpdateFields(ctx context.Context, taskID uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", taskID).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", taskID, err)
	}
	return nil
}

// Delete removes a task of the room and reports whether it existed
func (r *TaskRepository) Delete(ctx context.Context, roomID, taskID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND room_id = ?", taskID, roomID).
		Delete(&models.Task{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete task %d: %w", taskID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ClearTasker nulls the tasker on the room's tasks assigned to userID
func (r *TaskRepository) ClearTasker(ctx context.Context, roomID, userID uint) (int64, error) {
	return r.clearUser(ctx, roomID, userID, "tasker_id")
}

// ClearCreator nulls the creator on the room's tasks created by userID
func (r *TaskRepository) ClearCreator(ctx context.Context, roomID, userID uint) (int64, error) {
	return r.clearUser(ctx, roomID, userID, "creator_id")
}

func (r *TaskRepository) clearUser(ctx context.Context, roomID, userID uint, column string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("room_id = ? AND "+column+" = ?", roomID, userID).
		Update(column, nil)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear %s of room %d: %w", column, roomID, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByRoom removes every task of the room
func (r *TaskRepository) DeleteByRoom(ctx context.Context, roomID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("room_id = ?", roomID).Delete(&models.Task{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete tasks of room %d: %w", roomID, result.Error)
	}
	return result.RowsAffected, nil
}

// CountByRoom returns the total and completed task counts of the room
func (r *TaskRepository) CountByRoom(ctx context.Context, roomID uint) (total int64, completed int64, err error) {
	q := r.db.WithContext(ctx).Model(&models.Task{}).Where("room_id = ?", roomID)
	if err = q.Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count tasks of room %d: %w", roomID, err)
	}
	err = r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("room_id = ? AND is_completed = ?", roomID, true).
		Count(&completed).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count completed tasks of room %d: %w", roomID, err)
	}
	return total, completed, nil
}

// TaskScope restricts a listing to one room or one tasker
type TaskScope struct {
	RoomID   *uint
	TaskerID *uint
}

// FindWithPagination lists tasks in scope matching filter, open tasks first
// then newest first, and returns the total match count
func (r *TaskRepository) FindWithPagination(
	ctx context.Context,
	scope TaskScope,
	filter dto.TaskFilter,
	page, pageSize int) ([]models.Task, int64, error) {

	var tasks []models.Task
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&models.Task{})

	if scope.RoomID != nil {
		db = db.Where("room_id = ?", *scope.RoomID)
	}
	if scope.TaskerID != nil {
		db = db.Where("tasker_id = ?", *scope.TaskerID)
	}
	if filter.CreatorID != nil {
		db = db.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.TaskerID != nil {
		db = db.Where("tasker_id = ?", *filter.TaskerID)
	}
	if filter.IsCompleted != nil {
		db = db.Where("is_completed = ?", *filter.IsCompleted)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	err := db.
		Preload("Creator").
		Preload("Tasker").
		Preload("Room").
		Order("is_completed ASC").
		Order("id DESC").
		Limit(pageSize).
		Offset(utils.PageOffset(page, pageSize)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, totalCount, nil
}
