package models

import "time"

// RoomNameMaxLength is the longest accepted room name
const RoomNameMaxLength = 25

// Room is a shared workspace with one admin and a set of members.
// Slug always mirrors Name; repositories recompute it on every save.
type Room struct {
	ID        uint      `json:"room_id" gorm:"primaryKey"`
	Name      string    `json:"room_name" gorm:"size:25;not null"`
	Slug      string    `json:"room_slug" gorm:"size:50;index"`
	CreatedAt time.Time `json:"room_created_on" gorm:"autoCreateTime"`
	AdminID   *uint     `json:"-" gorm:"index"`

	// Relations
	Admin *User `json:"room_admin" gorm:"foreignKey:AdminID;constraint:OnDelete:SET NULL"`
}

// TableName sets the table name for Room model
func (Room) TableName() string {
	return "rooms"
}

// IsAdmin reports whether userID is the current admin of the room
func (r Room) IsAdmin(userID uint) bool {
	return r.AdminID != nil && *r.AdminID == userID
}
