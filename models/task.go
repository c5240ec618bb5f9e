package models

import "time"

// TaskDescriptionMaxLength is the longest accepted task description
const TaskDescriptionMaxLength = 100

// Task is a unit of work scoped to a room. Creator and tasker are nulled when
// the referenced user leaves the room; the task goes away with its room.
type Task struct {
	ID          uint      `json:"task_id" gorm:"primaryKey"`
	Description string    `json:"description" gorm:"size:100;not null"`
	IsUrgent    bool      `json:"is_urgent" gorm:"not null;default:false"`
	IsCompleted bool      `json:"is_completed" gorm:"not null;default:false;index"`
	CreatorID   *uint     `json:"-" gorm:"index"`
	TaskerID    *uint     `json:"-" gorm:"index"`
	RoomID      uint      `json:"room_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// Relations
	Creator *User `json:"creator" gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL"`
	Tasker  *User `json:"tasker" gorm:"foreignKey:TaskerID;constraint:OnDelete:SET NULL"`
	Room    *Room `json:"-" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// TableName sets the table name for Task model
func (Task) TableName() string {
	return "tasks"
}
