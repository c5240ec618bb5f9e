package services

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/metrics"
	"github.com/taskizy-api/models"
	"github.com/taskizy-api/repositories"
	"gorm.io/gorm"
)

// RoomService handles rooms and their memberships
type RoomService struct {
	db          *gorm.DB
	coordinator *MembershipCoordinator
	policy      AdminPolicy
	pageSize    int
	log         zerolog.Logger
}

// NewRoomService creates a new room service
func NewRoomService(db *gorm.DB, coordinator *MembershipCoordinator, policy AdminPolicy, pageSize int, log zerolog.Logger) *RoomService {
	return &RoomService{
		db:          db,
		coordinator: coordinator,
		policy:      policy,
		pageSize:    pageSize,
		log:         log,
	}
}

// completionPercentage rounds half to even; an empty room is 0%
func completionPercentage(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(completed) / float64(total) * 100))
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func validateRoomName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("room_name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(name) > models.RoomNameMaxLength {
		return "", NewValidationError("room_name", "Ensure this field has no more than 25 characters.")
	}
	return name, nil
}

// CreateRoom creates a room administered by the requester, who becomes its first member
func (s *RoomService) CreateRoom(ctx context.Context, name string, requesterID uint) (*dto.RoomDetail, error) {
	name, err := validateRoomName(name)
	if err != nil {
		return nil, err
	}

	var room models.Room
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repositories.NewUserRepository(tx).FindByID(ctx, requesterID); err != nil {
			return notFoundAs(err, NewValidationError("room_admin", "User with the specified ID does not exist"))
		}

		room = models.Room{Name: name, AdminID: &requesterID}
		if err := repositories.NewRoomRepository(tx).Create(ctx, &room); err != nil {
			return err
		}

		_, err := repositories.NewRoomMemberRepository(tx).Create(ctx, room.ID, requesterID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RoomsCreated.Inc()
	metrics.MembershipChanges.WithLabelValues("added").Inc()
	s.log.Info().Uint("room_id", room.ID).Uint("admin_id", requesterID).Msg("room created")

	return s.roomDetail(ctx, room.ID)
}

// ListRoomsFor lists the rooms the user is a member of
func (s *RoomService) ListRoomsFor(ctx context.Context, userID uint) ([]dto.RoomSummary, error) {
	rooms, err := repositories.NewRoomRepository(s.db).FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	members := repositories.NewRoomMemberRepository(s.db)
	tasks := repositories.NewTaskRepository(s.db)

	summaries := make([]dto.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		users, err := members.ListMembers(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		total, completed, err := tasks.CountByRoom(ctx, room.ID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, dto.RoomSummary{
			RoomID:            room.ID,
			RoomName:          room.Name,
			RoomCreatedOn:     room.CreatedAt,
			RoomAdmin:         room.Admin,
			RoomMembers:       users,
			RoomSlug:          room.Slug,
			TaskCompletedPerc: completionPercentage(completed, total),
			TasksCount:        total,
		})
	}
	return summaries, nil
}

// GetRoom returns the room with one page of its tasks
func (s *RoomService) GetRoom(ctx context.Context, roomID uint, filter dto.TaskFilter, page int) (*dto.RoomDetail, *TaskPage, error) {
	detail, err := s.roomDetail(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	tasks, err := listTasks(ctx, s.db, repositories.TaskScope{RoomID: &roomID}, filter, page, s.pageSize)
	if err != nil {
		return nil, nil, err
	}
	return detail, tasks, nil
}

// RenameRoom changes the room name; the slug follows
func (s *RoomService) RenameRoom(ctx context.Context, roomID uint, name string) (*dto.RoomDetail, error) {
	name, err := validateRoomName(name)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := repositories.NewRoomRepository(tx)
		room, err := rooms.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}
		room.Name = name
		return rooms.Save(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	return s.roomDetail(ctx, roomID)
}

// ReassignAdmin makes newAdminID the room admin, subject to the admin policy
func (s *RoomService) ReassignAdmin(ctx context.Context, roomID, newAdminID uint) error {
	var enrolled bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := repositories.NewRoomRepository(tx)
		room, err := rooms.FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}

		if _, err := repositories.NewUserRepository(tx).FindByID(ctx, newAdminID); err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}

		if enrolled, err = s.coordinator.EnsureAdminMembership(ctx, tx, roomID, newAdminID, s.policy); err != nil {
			return err
		}

		room.AdminID = &newAdminID
		return rooms.Save(ctx, room)
	})
	if err != nil {
		return err
	}

	if enrolled {
		metrics.MembershipChanges.WithLabelValues("added").Inc()
	}
	s.log.Info().Uint("room_id", roomID).Uint("admin_id", newAdminID).Str("policy", string(s.policy)).Msg("room admin reassigned")
	return nil
}

// AddMembers adds every user in memberIDs to the room. Either all ids resolve
// and are added, or nothing is written. Existing members are skipped.
func (s *RoomService) AddMembers(ctx context.Context, roomID uint, memberIDs []uint) (*dto.RoomDetail, error) {
	var added int
	memberIDs = uniqueIDs(memberIDs)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repositories.NewRoomRepository(tx).FindByIDForShare(ctx, roomID); err != nil {
			return notFoundAs(err, ErrRoomNotFound)
		}

		users, err := repositories.NewUserRepository(tx).FindByIDs(ctx, memberIDs)
		if err != nil {
			return err
		}
		if len(users) != len(memberIDs) {
			return ErrUserNotFound
		}

		members := repositories.NewRoomMemberRepository(tx)
		existing, err := members.MemberIDs(ctx, roomID)
		if err != nil {
			return err
		}
		isMember := make(map[uint]bool, len(existing))
		for _, id := range existing {
			isMember[id] = true
		}

		for _, id := range memberIDs {
			if isMember[id] {
				continue
			}
			if _, err := members.Create(ctx, roomID, id); err != nil {
				return err
			}
			isMember[id] = true
			added++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if added > 0 {
		metrics.MembershipChanges.WithLabelValues("added").Add(float64(added))
		s.log.Info().Uint("room_id", roomID).Int("added", added).Msg("members added to room")
	}
	return s.roomDetail(ctx, roomID)
}

// ListMembers lists the users who belong to the room
func (s *RoomService) ListMembers(ctx context.Context, roomID uint) ([]models.User, error) {
	exists, err := repositories.NewRoomRepository(s.db).Exists(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRoomNotFound
	}
	return repositories.NewRoomMemberRepository(s.db).ListMembers(ctx, roomID)
}

// IsMember reports whether userID belongs to the room
func (s *RoomService) IsMember(ctx context.Context, roomID, userID uint) (bool, error) {
	_, err := repositories.NewRoomMemberRepository(s.db).Find(ctx, roomID, userID)
	if err == nil {
		return true, nil
	}
	if err = notFoundAs(err, ErrMembershipNotFound); err == ErrMembershipNotFound {
		return false, nil
	}
	return false, err
}

// FindRoom loads a room with its admin
func (s *RoomService) FindRoom(ctx context.Context, roomID uint) (*models.Room, error) {
	room, err := repositories.NewRoomRepository(s.db).FindByID(ctx, roomID)
	if err != nil {
		return nil, notFoundAs(err, ErrRoomNotFound)
	}
	return room, nil
}

// RemoveMember removes a member from the room
func (s *RoomService) RemoveMember(ctx context.Context, roomID, memberID uint) error {
	return s.coordinator.RemoveMember(ctx, roomID, memberID)
}

// DeleteRoom deletes the room with its tasks
func (s *RoomService) DeleteRoom(ctx context.Context, roomID uint) error {
	return s.coordinator.DeleteRoom(ctx, roomID)
}

func (s *RoomService) roomDetail(ctx context.Context, roomID uint) (*dto.RoomDetail, error) {
	room, err := s.FindRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	users, err := repositories.NewRoomMemberRepository(s.db).ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	total, completed, err := repositories.NewTaskRepository(s.db).CountByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return &dto.RoomDetail{
		RoomID:            room.ID,
		RoomName:          room.Name,
		RoomSlug:          room.Slug,
		RoomAdmin:         room.Admin,
		RoomMembers:       users,
		TaskCount:         total,
		TaskCompletedPerc: completionPercentage(completed, total),
	}, nil
}
