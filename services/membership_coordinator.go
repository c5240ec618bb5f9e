package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taskizy-api/metrics"
	"github.com/taskizy-api/repositories"
	"gorm.io/gorm"
)

// AdminPolicy decides what reassigning a room admin requires of the new admin
type AdminPolicy string

const (
	// AdminPolicyAllow accepts any existing user as admin
	AdminPolicyAllow AdminPolicy = "allow"
	// AdminPolicyRequire rejects users that are not members of the room
	AdminPolicyRequire AdminPolicy = "require"
	// AdminPolicyEnroll adds the new admin as a member when needed
	AdminPolicyEnroll AdminPolicy = "enroll"
)

// ParseAdminPolicy validates a ROOM_ADMIN_POLICY value
func ParseAdminPolicy(value string) (AdminPolicy, error) {
	switch p := AdminPolicy(value); p {
	case AdminPolicyAllow, AdminPolicyRequire, AdminPolicyEnroll:
		return p, nil
	case "":
		return AdminPolicyAllow, nil
	default:
		return "", fmt.Errorf("unknown room admin policy %q", value)
	}
}

// MembershipCoordinator keeps rooms, memberships and task ownership consistent.
// Every multi-row change runs in a single transaction.
type MembershipCoordinator struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewMembershipCoordinator creates a coordinator on db
func NewMembershipCoordinator(db *gorm.DB, log zerolog.Logger) *MembershipCoordinator {
	return &MembershipCoordinator{db: db, log: log}
}

// RemoveMember detaches the member from the room's tasks and deletes the
// membership. The admin's own membership cannot be removed.
func (c *MembershipCoordinator) RemoveMember(ctx context.Context, roomID, memberID uint) error {
	var taskerCleared, creatorCleared int64

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := repositories.NewRoomRepository(tx)
		members := repositories.NewRoomMemberRepository(tx)
		tasks := repositories.NewTaskRepository(tx)

		room, err := rooms.FindByIDForShare(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}

		membership, err := members.FindForUpdate(ctx, roomID, memberID)
		if err != nil {
			return notFoundAs(err, ErrMembershipNotFound)
		}

		if room.IsAdmin(memberID) {
			return NewValidationError("member", "The room admin cannot be removed from the room.")
		}

		if taskerCleared, err = tasks.ClearTasker(ctx, roomID, memberID); err != nil {
			return err
		}
		if creatorCleared, err = tasks.ClearCreator(ctx, roomID, memberID); err != nil {
			return err
		}

		return members.Delete(ctx, membership.ID)
	})
	if err != nil {
		return err
	}

	metrics.MembershipChanges.WithLabelValues("removed").Inc()
	metrics.TasksDetached.WithLabelValues("tasker").Add(float64(taskerCleared))
	metrics.TasksDetached.WithLabelValues("creator").Add(float64(creatorCleared))

	c.log.Info().
		Uint("room_id", roomID).
		Uint("member_id", memberID).
		Int64("tasker_cleared", taskerCleared).
		Int64("creator_cleared", creatorCleared).
		Msg("member removed from room")
	return nil
}

// DeleteRoom deletes the room's tasks, detaches its memberships and deletes the room
func (c *MembershipCoordinator) DeleteRoom(ctx context.Context, roomID uint) error {
	var tasksDeleted, membershipsDetached int64

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := repositories.NewRoomRepository(tx)
		members := repositories.NewRoomMemberRepository(tx)
		tasks := repositories.NewTaskRepository(tx)

		if _, err := rooms.FindByIDForUpdate(ctx, roomID); err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}

		var err error
		if tasksDeleted, err = tasks.DeleteByRoom(ctx, roomID); err != nil {
			return err
		}
		if membershipsDetached, err = members.DetachRoom(ctx, roomID); err != nil {
			return err
		}

		deleted, err := rooms.Delete(ctx, roomID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrRoomNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RoomsDeleted.Inc()
	c.log.Info().
		Uint("room_id", roomID).
		Int64("tasks_deleted", tasksDeleted).
		Int64("memberships_detached", membershipsDetached).
		Msg("room deleted")
	return nil
}

// PurgeOrphanedMemberships deletes memberships left behind by deleted rooms
func (c *MembershipCoordinator) PurgeOrphanedMemberships(ctx context.Context) (int64, error) {
	purged, err := repositories.NewRoomMemberRepository(c.db).DeleteOrphaned(ctx)
	if err != nil {
		return 0, err
	}
	c.log.Info().Int64("purged", purged).Msg("orphaned memberships purged")
	return purged, nil
}

// RequireMember fails with a ValidationError on field unless userID is a
// member of the room. The membership row stays share-locked until tx ends.
func (c *MembershipCoordinator) RequireMember(ctx context.Context, tx *gorm.DB, roomID, userID uint, field string) error {
	_, err := repositories.NewRoomMemberRepository(tx).FindForShare(ctx, roomID, userID)
	if err != nil {
		return notFoundAs(err, NewValidationError(field, "User is not a member of this room."))
	}
	return nil
}

// EnsureAdminMembership applies policy to a prospective admin of the room and
// reports whether a membership was created for them
func (c *MembershipCoordinator) EnsureAdminMembership(ctx context.Context, tx *gorm.DB, roomID, adminID uint, policy AdminPolicy) (bool, error) {
	switch policy {
	case AdminPolicyRequire:
		return false, c.RequireMember(ctx, tx, roomID, adminID, "room_admin")
	case AdminPolicyEnroll:
		members := repositories.NewRoomMemberRepository(tx)
		_, err := members.FindForShare(ctx, roomID, adminID)
		if err == nil {
			return false, nil
		}
		if err = notFoundAs(err, ErrMembershipNotFound); err != ErrMembershipNotFound {
			return false, err
		}
		if _, err := members.Create(ctx, roomID, adminID); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}
