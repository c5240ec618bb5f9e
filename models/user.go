package models

import (
	"strings"
	"time"
)

// DefaultRole is assigned to new users when no role is given
const DefaultRole = "Member"

// User represents an identity that can own rooms and take tasks
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"` // Password is not exposed in JSON
	FirstName   string    `json:"first_name" gorm:"size:100;not null"`
	LastName    string    `json:"last_name" gorm:"size:100;not null"`
	Role        string    `json:"role" gorm:"size:50;default:'Member'"`
	UserImage   *string   `json:"user_image" gorm:"default:null"`
	IsActive    bool      `json:"-" gorm:"not null;default:true"`
	IsSuperuser bool      `json:"-" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TableName sets the table name for User model
func (User) TableName() string {
	return "users"
}

// FullName returns "first last"
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
