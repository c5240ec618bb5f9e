package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/middleware"
	"github.com/taskizy-api/services"
)

// ListMembers lists the members of a room
func (rc *RoomController) ListMembers(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	users, err := rc.roomService.ListMembers(c.Request.Context(), room.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRoomMembersResponse(users))
}

// AddMembers adds the users in new_members to the room
func (rc *RoomController) AddMembers(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)

	var req dto.AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ids, err := dto.ParseMemberList(req.NewMembers)
	if err != nil {
		respondError(c, services.NewValidationError("new_members", "Invalid JSON format."))
		return
	}

	detail, err := rc.roomService.AddMembers(c.Request.Context(), room.ID, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, detail)
}

// RemoveMember removes a member from the room. The admin may remove anyone,
// other members only themselves.
func (rc *RoomController) RemoveMember(c *gin.Context) {
	room, _ := middleware.GetCurrentRoom(c)
	userID, _ := middleware.GetCurrentUserID(c)

	memberID, err := uintParam(c, "member_id")
	if err != nil {
		respondError(c, err)
		return
	}

	if !room.IsAdmin(userID) && userID != memberID {
		respondError(c, services.ErrForbidden)
		return
	}

	if err := rc.roomService.RemoveMember(c.Request.Context(), room.ID, memberID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
