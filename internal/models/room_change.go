package models

import "time"

// RoomChangeStatus is the lifecycle state of a room change request.
// Pending may move to Approved or Rejected; both are terminal.
type RoomChangeStatus string

const (
	RoomChangePending  RoomChangeStatus = "Pending"
	RoomChangeApproved RoomChangeStatus = "Approved"
	RoomChangeRejected RoomChangeStatus = "Rejected"
)

// DecidableStatus reports whether the value is a valid decision outcome.
func DecidableStatus(status RoomChangeStatus) bool {
	return status == RoomChangeApproved || status == RoomChangeRejected
}

// RoomChangeRequest is a student's petition to move rooms. Room names are
// captured as free text at submission and only resolved during approval.
type RoomChangeRequest struct {
	ID            string           `db:"id" json:"id"`
	StudentID     string           `db:"student_id" json:"student_id"`
	Reason        string           `db:"reason" json:"reason"`
	CurrentRoom   string           `db:"current_room" json:"current_room"`
	DesiredRoom   string           `db:"desired_room" json:"desired_room"`
	Status        RoomChangeStatus `db:"status" json:"status"`
	AlternateRoom *string          `db:"alternate_room" json:"alternate_room,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
	DecidedAt     *time.Time       `db:"decided_at" json:"decided_at,omitempty"`
}

// SubmitRoomChangeRequest is the payload for a student submitting a
// room change petition.
type SubmitRoomChangeRequest struct {
	Reason      string `json:"reason" validate:"required,min=5,max=1000"`
	DesiredRoom string `json:"desired_room" validate:"required"`
}

// DecideRoomChangeRequest is the payload for approving or rejecting a
// pending request. AlternateRoom lets the decider move the student to a
// different room than the one requested.
type DecideRoomChangeRequest struct {
	RequestID     string           `json:"request_id" validate:"required"`
	Status        RoomChangeStatus `json:"status" validate:"required"`
	AlternateRoom *string          `json:"alternate_room"`
}

// RoomChangeDetail enriches a request with student and room context for the
// admin review screen.
type RoomChangeDetail struct {
	RoomChangeRequest
	StudentName        string `db:"student_name" json:"student_name"`
	StudentEmail       string `db:"student_email" json:"student_email"`
	CurrentRoomDetails *Room  `db:"-" json:"current_room_details,omitempty"`
	DesiredRoomDetails *Room  `db:"-" json:"desired_room_details,omitempty"`
}
