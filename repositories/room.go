package repositories

import (
	"context"
	"fmt"

	"github.com/taskizy-api/models"
	"github.com/taskizy-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomRepository handles database operations for rooms
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository bound to db (or a transaction)
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// FindByID retrieves a room with its admin
func (r *RoomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Preload("Admin").First(&room, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find room %d: %w", id, err)
	}
	return &room, nil
}

// FindByIDForUpdate retrieves a room and locks its row for the rest of the transaction
func (r *RoomRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Room, error) {
	return r.findLocked(ctx, id, "UPDATE")
}

// FindByIDForShare retrieves a room and holds a shared lock so it cannot be deleted underneath
func (r *RoomRepository) FindByIDForShare(ctx context.Context, id uint) (*models.Room, error) {
	return r.findLocked(ctx, id, "SHARE")
}

func (r *RoomRepository) findLocked(ctx context.Context, id uint, strength string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: strength}).
		First(&room, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock room %d: %w", id, err)
	}
	return &room, nil
}

// FindByMember lists the rooms the user belongs to, oldest first
func (r *RoomRepository) FindByMember(ctx context.Context, userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Preload("Admin").
		Where("id IN (?)", r.db.Model(&models.RoomMember{}).Select("room_id").Where("member_id = ?", userID)).
		Order("id").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms for user %d: %w", userID, err)
	}
	return rooms, nil
}

// Create inserts a new room, deriving its slug from the name
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	room.Slug = utils.Slugify(room.Name)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(room).Error; err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// Save persists a room, re-deriving its slug from the current name
func (r *RoomRepository) Save(ctx context.Context, room *models.Room) error {
	room.Slug = utils.Slugify(room.Name)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(room).Error; err != nil {
		return fmt.Errorf("failed to save room %d: %w", room.ID, err)
	}
	return nil
}

// Delete removes a room row and reports whether it existed
func (r *RoomRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Room{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete room %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Exists checks whether the room exists
func (r *RoomRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
