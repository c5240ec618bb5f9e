package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/taskizy-api/config"
	"github.com/taskizy-api/models"
	"gorm.io/gorm"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"taskizy.db", "taskizy.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:x.db?cache=shared", "file:x.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"x.db?_pragma=foreign_keys(1)", "x.db?_pragma=foreign_keys(1)"},
	}
	for _, tt := range tests {
		if got := SQLiteDSN(tt.in); got != tt.want {
			t.Errorf("SQLiteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitializeRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{DBDriver: "mysql", Env: "test"}
	if _, err := Initialize(cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestInitializeAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		Env:         "test",
	}
	db, err := Initialize(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for _, m := range Models() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("table for %T not created", m)
		}
	}
	if !db.Migrator().HasIndex(&models.RoomMember{}, "idx_room_member") {
		t.Error("composite membership index missing")
	}
}

func openMigratedSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "fk.db"),
		Env:         "test",
	}
	db, err := Initialize(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestForeignKeysEnforcedOnRoomDelete(t *testing.T) {
	db := openMigratedSQLite(t)

	alice := models.User{Email: "alice@example.com", Password: "x", FirstName: "Alice", LastName: "A", IsActive: true}
	bob := models.User{Email: "bob@example.com", Password: "x", FirstName: "Bob", LastName: "B", IsActive: true}
	for _, u := range []*models.User{&alice, &bob} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	room := models.Room{Name: "Kitchen", Slug: "kitchen", AdminID: &alice.ID}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("create room: %v", err)
	}
	for _, u := range []models.User{alice, bob} {
		memberID := u.ID
		if err := db.Create(&models.RoomMember{RoomID: &room.ID, MemberID: &memberID}).Error; err != nil {
			t.Fatalf("create membership: %v", err)
		}
	}
	task := models.Task{Description: "Wash dishes", CreatorID: &alice.ID, TaskerID: &bob.ID, RoomID: room.ID}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Members cannot be deleted while they hold a membership
	if err := db.Exec("DELETE FROM users WHERE id = ?", bob.ID).Error; err == nil {
		t.Error("deleting a user with a membership succeeded, want restrict")
	}

	if err := db.Exec("DELETE FROM rooms WHERE id = ?", room.ID).Error; err != nil {
		t.Fatalf("raw room delete: %v", err)
	}

	var tasks int64
	db.Model(&models.Task{}).Where("room_id = ?", room.ID).Count(&tasks)
	if tasks != 0 {
		t.Errorf("tasks left after room delete = %d, want 0", tasks)
	}

	var orphaned, attached int64
	db.Model(&models.RoomMember{}).Where("room_id IS NULL").Count(&orphaned)
	db.Model(&models.RoomMember{}).Where("room_id = ?", room.ID).Count(&attached)
	if orphaned != 2 || attached != 0 {
		t.Errorf("memberships orphaned=%d attached=%d, want 2 and 0", orphaned, attached)
	}
}
