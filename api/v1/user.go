package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/middleware"
	"github.com/taskizy-api/services"
)

// UserController handles profile endpoints
type UserController struct {
	userService *services.UserService
}

// NewUserController creates a new user controller
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

// GetMe returns the authenticated user's profile
func (uc *UserController) GetMe(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	user, err := uc.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial update to the authenticated user's profile
func (uc *UserController) UpdateMe(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadAvatar stores the multipart user_image file as the profile image
func (uc *UserController) UploadAvatar(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	header, err := c.FormFile("user_image")
	if err != nil {
		respondError(c, services.NewValidationError("user_image", "No file was submitted."))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	user, err := uc.userService.UploadAvatar(c.Request.Context(), userID, services.AvatarUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListNonMembers lists the users that are not yet members of the room
func (uc *UserController) ListNonMembers(c *gin.Context) {
	roomID, err := uintParam(c, "room_id")
	if err != nil {
		respondError(c, err)
		return
	}

	users, err := uc.userService.ListNonMembers(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}
