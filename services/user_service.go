package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/lib/storage"
	"github.com/taskizy-api/models"
	"github.com/taskizy-api/repositories"
	"gorm.io/gorm"
)

// MaxAvatarSize is the largest accepted avatar upload in bytes
const MaxAvatarSize = 5 << 20

// AvatarUpload is an uploaded profile image
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UserService handles profile operations
type UserService struct {
	db    *gorm.DB
	store storage.Store
	log   zerolog.Logger
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, store storage.Store, log zerolog.Logger) *UserService {
	return &UserService{db: db, store: store, log: log}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := repositories.NewUserRepository(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update
func (s *UserService) UpdateProfile(ctx context.Context, id uint, req dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		if name == "" {
			return nil, NewValidationError("first_name", "This field may not be blank.")
		}
		user.FirstName = name
	}
	if req.LastName != nil {
		name := strings.TrimSpace(*req.LastName)
		if name == "" {
			return nil, NewValidationError("last_name", "This field may not be blank.")
		}
		user.LastName = name
	}
	if req.Role != nil {
		user.Role = strings.TrimSpace(*req.Role)
	}

	if err := repositories.NewUserRepository(s.db).Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar stores a new profile image and points the user at it
func (s *UserService) UploadAvatar(ctx context.Context, id uint, upload AvatarUpload) (*models.User, error) {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, NewValidationError("user_image", "Upload a valid image.")
	}
	if upload.Size > MaxAvatarSize {
		return nil, NewValidationError("user_image", "The image may not be larger than 5 MB.")
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("profile_images/%d/%s%s", id, uuid.NewString(), strings.ToLower(filepath.Ext(upload.Filename)))
	obj, err := s.store.Put(ctx, key, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		return nil, err
	}

	user.UserImage = &obj.URL
	if err := repositories.NewUserRepository(s.db).Update(ctx, user); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", key).Msg("failed to clean up avatar after update error")
		}
		return nil, err
	}

	s.log.Info().Uint("user_id", id).Str("driver", s.store.Driver()).Msg("avatar uploaded")
	return user, nil
}

// ListNonMembers lists users that could be invited to the room
func (s *UserService) ListNonMembers(ctx context.Context, roomID uint) ([]models.User, error) {
	exists, err := repositories.NewRoomRepository(s.db).Exists(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRoomNotFound
	}
	return repositories.NewUserRepository(s.db).FindNotInRoom(ctx, roomID)
}
