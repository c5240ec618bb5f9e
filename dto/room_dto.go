package dto

import (
	"encoding/json"
	"time"

	"github.com/taskizy-api/models"
)

// RoomRequest is used to create or rename a room
type RoomRequest struct {
	RoomName string `json:"room_name"`
}

// AssignAdminRequest reassigns the room admin
type AssignAdminRequest struct {
	RoomAdmin FlexID `json:"room_admin" binding:"required"`
}

// AddMembersRequest carries the raw new_members payload, decoded with ParseMemberList
type AddMembersRequest struct {
	NewMembers json.RawMessage `json:"new_members"`
}

// RoomSummary is one entry of the room list
type RoomSummary struct {
	RoomID            uint          `json:"room_id"`
	RoomName          string        `json:"room_name"`
	RoomCreatedOn     time.Time     `json:"room_created_on"`
	RoomAdmin         *models.User  `json:"room_admin"`
	RoomMembers       []models.User `json:"room_members"`
	RoomSlug          string        `json:"room_slug"`
	TaskCompletedPerc int           `json:"task_completed_perc"`
	TasksCount        int64         `json:"tasks_count"`
}

// RoomDetail describes a single room
type RoomDetail struct {
	RoomID            uint          `json:"room_id"`
	RoomName          string        `json:"room_name"`
	RoomSlug          string        `json:"room_slug"`
	RoomAdmin         *models.User  `json:"room_admin"`
	RoomMembers       []models.User `json:"room_members"`
	TaskCount         int64         `json:"task_count"`
	TaskCompletedPerc int           `json:"task_completed_perc"`
}

// RoomMemberEntry wraps one member in the members listing
type RoomMemberEntry struct {
	RoomMember models.User `json:"room_member"`
}

// RoomMembersResponse is the members listing
type RoomMembersResponse struct {
	RoomMembers []RoomMemberEntry `json:"room_members"`
}

// NewRoomMembersResponse wraps users in the members listing shape
func NewRoomMembersResponse(users []models.User) RoomMembersResponse {
	entries := make([]RoomMemberEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, RoomMemberEntry{RoomMember: u})
	}
	return RoomMembersResponse{RoomMembers: entries}
}
