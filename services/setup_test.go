package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/taskizy-api/database"
	"github.com/taskizy-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a migrated sqlite database with foreign keys enforced
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := database.SQLiteDSN(filepath.Join(t.TempDir(), "taskizy_test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

type testEnv struct {
	db          *gorm.DB
	coordinator *MembershipCoordinator
	rooms       *RoomService
	tasks       *TaskService
}

func newTestEnv(t *testing.T, policy AdminPolicy) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	log := zerolog.Nop()
	coordinator := NewMembershipCoordinator(db, log)
	return &testEnv{
		db:          db,
		coordinator: coordinator,
		rooms:       NewRoomService(db, coordinator, policy, 10, log),
		tasks:       NewTaskService(db, coordinator, 10, log),
	}
}

func createTestUser(t *testing.T, db *gorm.DB, firstName string) *models.User {
	t.Helper()

	user := models.User{
		Email:     fmt.Sprintf("%s@example.com", firstName),
		Password:  "x",
		FirstName: firstName,
		LastName:  "Tester",
		IsActive:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", firstName, err)
	}
	return &user
}

func createTestRoom(t *testing.T, env *testEnv, name string, admin *models.User, members ...*models.User) uint {
	t.Helper()

	room, err := env.rooms.CreateRoom(context.Background(), name, admin.ID)
	if err != nil {
		t.Fatalf("CreateRoom(%q): %v", name, err)
	}
	if len(members) > 0 {
		ids := make([]uint, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		if _, err := env.rooms.AddMembers(context.Background(), room.RoomID, ids); err != nil {
			t.Fatalf("AddMembers: %v", err)
		}
	}
	return room.RoomID
}

func createTestTask(t *testing.T, env *testEnv, roomID uint, creator, tasker *models.User, description string) *models.Task {
	t.Helper()

	task, err := env.tasks.CreateTask(context.Background(), CreateTaskInput{
		Description: description,
		TaskerID:    &tasker.ID,
		CreatorID:   creator.ID,
		RoomID:      roomID,
	})
	if err != nil {
		t.Fatalf("CreateTask(%q): %v", description, err)
	}
	return task
}

func countMemberships(t *testing.T, db *gorm.DB, where string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.RoomMember{}).Where(where, args...).Count(&count).Error; err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	return count
}
