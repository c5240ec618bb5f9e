package repositories

import (
	"context"
	"fmt"

	"github.com/taskizy-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomMemberRepository handles database operations for room memberships
type RoomMemberRepository struct {
	db *gorm.DB
}

// NewRoomMemberRepository creates a new membership repository bound to db (or a transaction)
func NewRoomMemberRepository(db *gorm.DB) *RoomMemberRepository {
	return &RoomMemberRepository{db: db}
}

// Find retrieves the membership row for (room, member)
func (r *RoomMemberRepository) Find(ctx context.Context, roomID, memberID uint) (*models.RoomMember, error) {
	return r.find(ctx, roomID, memberID, "")
}

// FindForUpdate retrieves the membership row and locks it exclusively
func (r *RoomMemberRepository) FindForUpdate(ctx context.Context, roomID, memberID uint) (*models.RoomMember, error) {
	return r.find(ctx, roomID, memberID, "UPDATE")
}

// FindForShare retrieves the membership row and holds a shared lock on it
func (r *RoomMemberRepository) FindForShare(ctx context.Context, roomID, memberID uint) (*models.RoomMember, error) {
	return r.find(ctx, roomID, memberID, "SHARE")
}

func (r *RoomMemberRepository) find(ctx context.Context, roomID, memberID uint, strength string) (*models.RoomMember, error) {
	var membership models.RoomMember
	q := r.db.WithContext(ctx)
	if strength != "" {
		q = q.Clauses(clause.Locking{Strength: strength})
	}
	err := q.Where("room_id = ? AND member_id = ?", roomID, memberID).First(&membership).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find member %d of room %d: %w", memberID, roomID, err)
	}
	return &membership, nil
}

// MemberIDs returns the ids of every member of the room
func (r *RoomMemberRepository) MemberIDs(ctx context.Context, roomID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.RoomMember{}).
		Where("room_id = ? AND member_id IS NOT NULL", roomID).
		Order("id").
		Pluck("member_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list member ids of room %d: %w", roomID, err)
	}
	return ids, nil
}

// ListMembers returns the users who are members of the room, in join order
func (r *RoomMemberRepository) ListMembers(ctx context.Context, roomID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN room_members ON room_members.member_id = users.id").
		Where("room_members.room_id = ?", roomID).
		Order("room_members.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members of room %d: %w", roomID, err)
	}
	return users, nil
}

// Create inserts a membership row
func (r *RoomMemberRepository) Create(ctx context.Context, roomID, memberID uint) (*models.RoomMember, error) {
	membership := models.RoomMember{RoomID: &roomID, MemberID: &memberID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&membership).Error; err != nil {
		return nil, fmt.Errorf("failed to add member %d to room %d: %w", memberID, roomID, err)
	}
	return &membership, nil
}

// Delete removes a membership row by id
func (r *RoomMemberRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.RoomMember{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete membership %d: %w", id, err)
	}
	return nil
}

// DetachRoom sets room_id to NULL on every membership of the room
func (r *RoomMemberRepository) DetachRoom(ctx context.Context, roomID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RoomMember{}).
		Where("room_id = ?", roomID).
		Update("room_id", nil)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to detach memberships of room %d: %w", roomID, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteOrphaned removes memberships whose room no longer exists
func (r *RoomMemberRepository) DeleteOrphaned(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("room_id IS NULL").Delete(&models.RoomMember{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge orphaned memberships: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountByRoom counts the members of a room
func (r *RoomMemberRepository) CountByRoom(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RoomMember{}).Where("room_id = ?", roomID).Count(&count).Error
	return count, err
}
