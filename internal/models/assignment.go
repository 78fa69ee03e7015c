package models

import "time"

// StudentRoom is the active room assignment edge. At most one row per
// student; the unique constraint on student_id is the authoritative guard.
type StudentRoom struct {
	StudentID  string    `db:"student_id" json:"student_id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// AssignRoomRequest is the payload for assigning a student to a room. The
// room may be referenced by ID or by name; ID wins when both are present.
// The student is looked up by email and created when missing.
type AssignRoomRequest struct {
	RoomID       string `json:"room_id" validate:"omitempty,uuid"`
	RoomName     string `json:"room_name" validate:"required_without=RoomID"`
	StudentName  string `json:"student_name" validate:"required,min=2,max=120"`
	StudentEmail string `json:"student_email" validate:"required,email"`
}

// AssignmentDetail is the assignment enriched with room and student context.
type AssignmentDetail struct {
	StudentRoom
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	RoomName     string `db:"room_name" json:"room_name"`
	RoomCapacity int    `db:"room_capacity" json:"room_capacity"`
}
