package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/dto"
)

// Logout blacklists the given refresh token
func (ac *AuthController) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ac.authService.Logout(c.Request.Context(), req.Refresh); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusResetContent)
}
