package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/models"
)

// RoomAccessChecker resolves rooms and memberships for the room middlewares
type RoomAccessChecker interface {
	FindRoom(ctx context.Context, roomID uint) (*models.Room, error)
	IsMember(ctx context.Context, roomID, userID uint) (bool, error)
}

// RoomMemberMiddleware loads the room named by the :room_id parameter and
// requires the authenticated user to be one of its members.
// This middleware should be used after AuthMiddleware
func RoomMemberMiddleware(rooms RoomAccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		roomID, err := strconv.ParseUint(c.Param("room_id"), 10, 64)
		if err != nil {
			abortWithError(c, http.StatusNotFound, "room not found")
			return
		}

		room, err := rooms.FindRoom(c.Request.Context(), uint(roomID))
		if err != nil {
			abortWithError(c, http.StatusNotFound, "room not found")
			return
		}

		member, err := rooms.IsMember(c.Request.Context(), room.ID, userID)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Failed to check room membership")
			return
		}
		if !member {
			abortWithError(c, http.StatusForbidden, "You are not a member of this room.")
			return
		}

		c.Set(ContextRoomKey, room)
		c.Next()
	}
}

// RoomAdminMiddleware requires the authenticated user to be the room admin.
// This middleware should be used after RoomMemberMiddleware
func RoomAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := GetCurrentUserID(c)

		room, ok := GetCurrentRoom(c)
		if !ok {
			abortWithError(c, http.StatusNotFound, "room not found")
			return
		}

		if !room.IsAdmin(userID) {
			abortWithError(c, http.StatusForbidden, "Room admin privileges required")
			return
		}

		c.Next()
	}
}

// GetCurrentRoom returns the room loaded by RoomMemberMiddleware
func GetCurrentRoom(c *gin.Context) (*models.Room, bool) {
	value, exists := c.Get(ContextRoomKey)
	if !exists {
		return nil, false
	}
	room, ok := value.(*models.Room)
	return room, ok
}
