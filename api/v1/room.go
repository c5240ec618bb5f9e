package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/middleware"
	"github.com/taskizy-api/services"
)

// RoomController handles room and membership endpoints
type RoomController struct {
	roomService *services.RoomService
}

// NewRoomController creates a new room controller
func NewRoomController(roomService *services.RoomService) *RoomController {
	return &RoomController{roomService: roomService}
}

// ListRooms godoc
// @Summary List the rooms the caller belongs to
// @Tags rooms
// @Produce json
// @Success 200 {array} dto.RoomSummary
// @Router /rooms/ [get]
func (rc *RoomController) ListRooms(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	rooms, err := rc.roomService.ListRoomsFor(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// CreateRoom godoc
// @Summary Create a room administered by the caller
// @Tags rooms
// @Accept json
// @Produce json
// @Param request body dto.RoomRequest true "Room name"
// @Success 201 {object} dto.RoomDetail
// @Router /rooms/ [post]
func (rc *RoomController) CreateRoom(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	var req dto.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	room, err := rc.roomService.CreateRoom(c.Request.Context(), req.RoomName, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

// GetRoom godoc
// @Summary Get a room with one page of its tasks
// @Tags rooms
// @Produce json
// @Param room_id path int true "Room ID"
// @Param room_slug path string true "Room slug"
// @Param page query int false "Page number"
// @Param creator_id query int false "Filter by creator"
// @Param tasker_id query int false "Filter by tasker"
// @Param is_completed query bool false "Filter by completion"
// @Success 200 {object} dto.PaginatedTasksResponse
// @Router /room/{room_id}/{room_slug}/ [get]
func (rc *RoomController) GetRoom(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	filter, err := parseTaskFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	detail, tasks, err := rc.roomService.GetRoom(c.Request.Context(), room.ID, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedTasks(c, tasks, detail))
}

// UpdateRoom renames a room
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	var req dto.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	detail, err := rc.roomService.RenameRoom(c.Request.Context(), room.ID, req.RoomName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteRoom deletes a room together with its tasks
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	if err := rc.roomService.DeleteRoom(c.Request.Context(), room.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignAdmin godoc
// @Summary Reassign the room admin
// @Tags rooms
// @Accept json
// @Produce json
// @Param request body dto.AssignAdminRequest true "New admin"
// @Success 200 {object} map[string]string
// @Router /room/{room_id}/{room_slug}/assign_as_admin/ [patch]
func (rc *RoomController) AssignAdmin(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	var req dto.AssignAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := rc.roomService.ReassignAdmin(c.Request.Context(), room.ID, uint(req.RoomAdmin)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room admin updated."})
}
