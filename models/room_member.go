package models

import "time"

// RoomMember links a user to a room. RoomID becomes NULL when the room is
// deleted; such orphaned rows are purged by maintenance.
type RoomMember struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	RoomID    *uint     `json:"room_id" gorm:"uniqueIndex:idx_room_member"`
	MemberID  *uint     `json:"room_member_id" gorm:"uniqueIndex:idx_room_member"`
	CreatedAt time.Time `json:"-"`

	// Relations
	Room   *Room `json:"-" gorm:"foreignKey:RoomID;constraint:OnDelete:SET NULL"`
	Member *User `json:"room_member,omitempty" gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT"`
}

// TableName sets the table name for RoomMember model
func (RoomMember) TableName() string {
	return "room_members"
}
