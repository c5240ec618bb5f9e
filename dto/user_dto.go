package dto

// UpdateProfileRequest is a partial profile update. Email, password and
// privilege flags cannot be changed through it.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Role      *string `json:"role" binding:"omitempty,max=50"`
}
