package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/taskizy-api/database"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/lib/cache"
	"github.com/taskizy-api/lib/storage"
	"github.com/taskizy-api/models"
	"github.com/taskizy-api/services"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiTest struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	store  *storage.MemoryStore
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()

	dsn := database.SQLiteDSN(filepath.Join(t.TempDir(), "api_test.db"))
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

	log := zerolog.Nop()
	authService, err := services.NewAuthService(db, cache.NewMemoryBlacklist(), "test-secret", time.Hour, 24*time.Hour, log)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	store := storage.NewMemoryStore("")
	coordinator := services.NewMembershipCoordinator(db, log)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), Services{
		Auth:  authService,
		Users: services.NewUserService(db, store, log),
		Rooms: services.NewRoomService(db, coordinator, services.AdminPolicyAllow, 10, log),
		Tasks: services.NewTaskService(db, coordinator, 10, log),
	})

	return &apiTest{t: t, db: db, router: router, store: store}
}

func (a *apiTest) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *apiTest) expect(w *httptest.ResponseRecorder, status int, out interface{}) {
	a.t.Helper()

	if w.Code != status {
		a.t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			a.t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
		}
	}
}

// signup registers a user and returns its id with a token pair
func (a *apiTest) signup(name string) (uint, dto.TokenPairResponse) {
	a.t.Helper()

	email := name + "@example.com"
	var user models.User
	a.expect(a.do(http.MethodPost, "/auth/users/", "", gin.H{
		"email":       email,
		"first_name":  name,
		"last_name":   "Tester",
		"password":    "s3cret-pass",
		"re_password": "s3cret-pass",
	}), http.StatusCreated, &user)

	var tokens dto.TokenPairResponse
	a.expect(a.do(http.MethodPost, "/auth/jwt/create/", "", gin.H{
		"email":    email,
		"password": "s3cret-pass",
	}), http.StatusOK, &tokens)

	return user.ID, tokens
}

func TestAuthFlow(t *testing.T) {
	a := newAPITest(t)
	_, tokens := a.signup("alice")

	var me models.User
	a.expect(a.do(http.MethodGet, "/users/get-users/me/", tokens.Access, nil), http.StatusOK, &me)
	if me.Email != "alice@example.com" || me.Role != models.DefaultRole {
		t.Errorf("me = %+v", me)
	}

	a.expect(a.do(http.MethodGet, "/users/get-users/me/", "", nil), http.StatusUnauthorized, nil)
	a.expect(a.do(http.MethodGet, "/users/get-users/me/", tokens.Refresh, nil), http.StatusUnauthorized, nil)

	var refreshed dto.AccessTokenResponse
	a.expect(a.do(http.MethodPost, "/auth/jwt/refresh/", "", gin.H{"refresh": tokens.Refresh}), http.StatusOK, &refreshed)
	if refreshed.Access == "" {
		t.Fatal("refresh returned no access token")
	}

	w := a.do(http.MethodPost, "/users/logout/", tokens.Access, gin.H{"refresh": tokens.Refresh})
	a.expect(w, http.StatusResetContent, nil)

	a.expect(a.do(http.MethodPost, "/auth/jwt/refresh/", "", gin.H{"refresh": tokens.Refresh}), http.StatusUnauthorized, nil)
	a.expect(a.do(http.MethodPost, "/users/logout/", tokens.Access, gin.H{"refresh": "garbage"}), http.StatusBadRequest, nil)
}

func TestRegisterValidation(t *testing.T) {
	a := newAPITest(t)
	a.signup("alice")

	a.expect(a.do(http.MethodPost, "/auth/users/", "", gin.H{
		"email":       "alice@example.com",
		"first_name":  "Alice",
		"last_name":   "Again",
		"password":    "s3cret-pass",
		"re_password": "s3cret-pass",
	}), http.StatusBadRequest, nil)

	a.expect(a.do(http.MethodPost, "/auth/users/", "", gin.H{
		"email":       "bob@example.com",
		"first_name":  "Bob",
		"last_name":   "Tester",
		"password":    "s3cret-pass",
		"re_password": "different-pass",
	}), http.StatusBadRequest, nil)

	a.expect(a.do(http.MethodPost, "/auth/jwt/create/", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}), http.StatusUnauthorized, nil)
}

func TestUpdateProfile(t *testing.T) {
	a := newAPITest(t)
	_, tokens := a.signup("alice")

	var me models.User
	a.expect(a.do(http.MethodPatch, "/users/get-users/me/", tokens.Access, gin.H{"last_name": "Liddell"}), http.StatusOK, &me)
	if me.LastName != "Liddell" || me.FirstName != "alice" {
		t.Errorf("after patch = %+v", me)
	}
}

func TestUploadAvatar(t *testing.T) {
	a := newAPITest(t)
	_, tokens := a.signup("alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="user_image"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	part.Write([]byte("\x89PNG fake image"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/get-users/me/avatar/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "JWT "+tokens.Access)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var me models.User
	a.expect(w, http.StatusOK, &me)
	if me.UserImage == nil || !strings.HasSuffix(*me.UserImage, ".png") {
		t.Fatalf("user_image = %v, want a .png url", me.UserImage)
	}
	if data, ok := a.store.Get(strings.TrimPrefix(*me.UserImage, "/media/")); !ok || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("stored avatar missing for %s", *me.UserImage)
	}
}

func TestRoomLifecycle(t *testing.T) {
	a := newAPITest(t)
	aliceID, alice := a.signup("alice")
	bobID, bob := a.signup("bob")
	carolID, carol := a.signup("carol")

	var room dto.RoomDetail
	a.expect(a.do(http.MethodPost, "/rooms/", alice.Access, gin.H{"room_name": "Home Chores"}), http.StatusCreated, &room)
	if room.RoomSlug != "home-chores" || room.RoomAdmin == nil || room.RoomAdmin.ID != aliceID {
		t.Fatalf("created room = %+v", room)
	}
	roomPath := fmt.Sprintf("/room/%d/%s/", room.RoomID, room.RoomSlug)

	// Non-members see neither the room nor its non-member list
	a.expect(a.do(http.MethodGet, roomPath, bob.Access, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/users/get-users/%d/", room.RoomID), bob.Access, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodGet, "/room/999/missing/", alice.Access, nil), http.StatusNotFound, nil)

	var outsiders []models.User
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/users/get-users/%d/", room.RoomID), alice.Access, nil), http.StatusOK, &outsiders)
	if len(outsiders) != 2 {
		t.Errorf("non-members = %d, want 2", len(outsiders))
	}

	// new_members may arrive as a JSON-encoded string
	a.expect(a.do(http.MethodPost, roomPath+"members/", alice.Access, gin.H{
		"new_members": fmt.Sprintf("[%d]", bobID),
	}), http.StatusCreated, &room)
	if len(room.RoomMembers) != 2 {
		t.Fatalf("members after add = %+v", room.RoomMembers)
	}
	a.expect(a.do(http.MethodPost, roomPath+"members/", alice.Access, gin.H{"new_members": "not json"}), http.StatusBadRequest, nil)

	var members dto.RoomMembersResponse
	a.expect(a.do(http.MethodGet, roomPath+"members/", bob.Access, nil), http.StatusOK, &members)
	if len(members.RoomMembers) != 2 {
		t.Errorf("member listing = %+v", members)
	}

	// Only the admin renames or reassigns
	a.expect(a.do(http.MethodPut, roomPath, bob.Access, gin.H{"room_name": "Mine Now"}), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodPut, roomPath, alice.Access, gin.H{"room_name": "Flat Chores"}), http.StatusOK, &room)
	if room.RoomSlug != "flat-chores" {
		t.Errorf("slug after rename = %q", room.RoomSlug)
	}
	roomPath = fmt.Sprintf("/room/%d/%s/", room.RoomID, room.RoomSlug)

	var rooms []dto.RoomSummary
	a.expect(a.do(http.MethodGet, "/rooms/", bob.Access, nil), http.StatusOK, &rooms)
	if len(rooms) != 1 || rooms[0].RoomID != room.RoomID {
		t.Errorf("bob's rooms = %+v", rooms)
	}
	a.expect(a.do(http.MethodGet, "/rooms/", carol.Access, nil), http.StatusOK, &rooms)
	if len(rooms) != 0 {
		t.Errorf("carol's rooms = %+v", rooms)
	}

	// Members remove themselves, not each other
	a.expect(a.do(http.MethodPost, roomPath+"members/", alice.Access, gin.H{
		"new_members": []gin.H{{"value": carolID}},
	}), http.StatusCreated, nil)
	a.expect(a.do(http.MethodDelete, fmt.Sprintf("/room/%d/member/%d/destroy/", room.RoomID, carolID), bob.Access, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodDelete, fmt.Sprintf("/room/%d/member/%d/destroy/", room.RoomID, carolID), carol.Access, nil), http.StatusNoContent, nil)

	a.expect(a.do(http.MethodPatch, roomPath+"assign_as_admin/", alice.Access, gin.H{"room_admin": fmt.Sprint(bobID)}), http.StatusOK, nil)
	a.expect(a.do(http.MethodDelete, roomPath, alice.Access, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodDelete, roomPath, bob.Access, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, roomPath, bob.Access, nil), http.StatusNotFound, nil)
}

func TestTaskLifecycle(t *testing.T) {
	a := newAPITest(t)
	aliceID, alice := a.signup("alice")
	bobID, bob := a.signup("bob")
	carolID, _ := a.signup("carol")

	var room dto.RoomDetail
	a.expect(a.do(http.MethodPost, "/rooms/", alice.Access, gin.H{"room_name": "Kitchen"}), http.StatusCreated, &room)
	a.expect(a.do(http.MethodPost, fmt.Sprintf("/room/%d/%s/members/", room.RoomID, room.RoomSlug), alice.Access, gin.H{
		"new_members": []uint{bobID},
	}), http.StatusCreated, nil)

	taskBase := fmt.Sprintf("/task/room/%d/", room.RoomID)

	var task dto.TaskResponse
	a.expect(a.do(http.MethodPost, taskBase+"create/", alice.Access, gin.H{
		"description": "wash dishes",
		"tasker":      fmt.Sprint(bobID),
		"is_urgent":   "on",
	}), http.StatusCreated, &task)
	if !task.IsUrgent || task.Tasker == nil || task.Tasker.ID != bobID || task.Creator == nil || task.Creator.ID != aliceID {
		t.Fatalf("created task = %+v", task)
	}

	a.expect(a.do(http.MethodPost, taskBase+"create/", alice.Access, gin.H{
		"description": "mop floor",
		"tasker":      carolID,
	}), http.StatusBadRequest, nil)
	a.expect(a.do(http.MethodPost, taskBase+"create/", alice.Access, gin.H{
		"description": "   ",
		"tasker":      bobID,
	}), http.StatusBadRequest, nil)

	taskPath := fmt.Sprintf("%stask/%d/", taskBase, task.TaskID)
	a.expect(a.do(http.MethodPatch, taskPath+"mark-done/", bob.Access, gin.H{"is_completed": true}), http.StatusOK, &task)
	if !task.IsCompleted || task.Description != "wash dishes" {
		t.Errorf("after mark-done = %+v", task)
	}

	var page dto.PaginatedTasksResponse
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/room/%d/%s/", room.RoomID, room.RoomSlug), alice.Access, nil), http.StatusOK, &page)
	if page.Count != 1 || page.Results.RoomData == nil || page.Results.RoomData.TaskCompletedPerc != 100 {
		t.Errorf("room page = %+v", page)
	}
	if page.Next != nil || page.Previous != nil || page.Results.TotalPages != 1 {
		t.Errorf("page links = %v/%v pages %d", page.Next, page.Previous, page.Results.TotalPages)
	}
	a.expect(a.do(http.MethodGet, taskBase+"create/?page=2", alice.Access, nil), http.StatusNotFound, nil)
	page = dto.PaginatedTasksResponse{}
	a.expect(a.do(http.MethodGet, taskBase+"create/?is_completed=false", alice.Access, nil), http.StatusOK, &page)
	if page.Count != 0 || page.Results.RoomData != nil {
		t.Errorf("filtered page = %+v", page)
	}

	page = dto.PaginatedTasksResponse{}
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/tasks/user/%d/", bobID), bob.Access, nil), http.StatusOK, &page)
	if page.Count != 1 {
		t.Errorf("bob's tasks = %d, want 1", page.Count)
	}
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/tasks/user/%d/", bobID), alice.Access, nil), http.StatusForbidden, nil)

	// Leaving the room detaches bob from the task
	a.expect(a.do(http.MethodDelete, fmt.Sprintf("/room/%d/member/%d/destroy/", room.RoomID, bobID), alice.Access, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, taskPath, alice.Access, nil), http.StatusOK, &task)
	if task.Tasker != nil {
		t.Errorf("tasker after removal = %+v, want null", task.Tasker)
	}
	a.expect(a.do(http.MethodGet, taskPath, bob.Access, nil), http.StatusForbidden, nil)

	a.expect(a.do(http.MethodDelete, taskPath+"delete/", alice.Access, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, taskPath, alice.Access, nil), http.StatusNotFound, nil)
}

func TestPaginationLinks(t *testing.T) {
	a := newAPITest(t)
	aliceID, alice := a.signup("alice")

	var room dto.RoomDetail
	a.expect(a.do(http.MethodPost, "/rooms/", alice.Access, gin.H{"room_name": "Busy"}), http.StatusCreated, &room)
	taskBase := fmt.Sprintf("/task/room/%d/create/", room.RoomID)
	for i := 0; i < 12; i++ {
		a.expect(a.do(http.MethodPost, taskBase, alice.Access, gin.H{
			"description": fmt.Sprintf("task %d", i),
			"tasker":      aliceID,
		}), http.StatusCreated, nil)
	}

	var page dto.PaginatedTasksResponse
	a.expect(a.do(http.MethodGet, taskBase, alice.Access, nil), http.StatusOK, &page)
	if page.Count != 12 || len(page.Results.Tasks) != 10 || page.Results.TotalPages != 2 {
		t.Fatalf("page 1 = count %d, tasks %d, pages %d", page.Count, len(page.Results.Tasks), page.Results.TotalPages)
	}
	if page.Next == nil || !strings.HasSuffix(*page.Next, "/api/v1"+taskBase+"?page=2") {
		t.Errorf("next = %v", page.Next)
	}
	if page.Previous != nil {
		t.Errorf("previous on page 1 = %v", *page.Previous)
	}

	a.expect(a.do(http.MethodGet, taskBase+"?page=2", alice.Access, nil), http.StatusOK, &page)
	if len(page.Results.Tasks) != 2 || page.Next != nil {
		t.Errorf("page 2 = tasks %d, next %v", len(page.Results.Tasks), page.Next)
	}
	if page.Previous == nil || strings.Contains(*page.Previous, "page=") {
		t.Errorf("previous on page 2 = %v, want page 1 without param", page.Previous)
	}
}

func TestHealthCheck(t *testing.T) {
	a := newAPITest(t)

	router := gin.New()
	router.GET("/health", NewHealthController(a.db, cache.NewMemoryBlacklist()).HealthCheck)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	a.expect(w, http.StatusOK, &body)
	if body.Status != "ok" || body.Checks["database"] != "ok" || body.Checks["cache"] != "ok" {
		t.Errorf("health = %+v", body)
	}
}
