package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes the repositories translate into domain sentinels.
const uniqueViolation = pq.ErrorCode("23505")

// Sentinel errors. Services map these onto the typed API error taxonomy.
var (
	// ErrDuplicateEmail: unique constraint on users.email fired.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrDuplicateName: unique name constraint fired (floors.name, rooms.name).
	ErrDuplicateName = errors.New("name already in use")
	// ErrRoomFull: the capacity check inside the assignment transaction found
	// the room at or over capacity.
	ErrRoomFull = errors.New("room at capacity")
	// ErrAlreadyAssigned: the student already holds an active assignment. The
	// unique constraint on student_rooms.student_id is the source of truth.
	ErrAlreadyAssigned = errors.New("student already assigned")
	// ErrDuplicatePending: the student already has a pending room change
	// request. The guarded insert in RoomChangeRepository.Create is the
	// source of truth.
	ErrDuplicatePending = errors.New("student already has a pending request")
	// ErrNoActiveAssignment: a room change was approved for a student without
	// an active assignment row to move.
	ErrNoActiveAssignment = errors.New("student has no active assignment")
	// ErrRequestNotPending: the request was already decided (or missing) when
	// the status flip ran.
	ErrRequestNotPending = errors.New("room change request is not pending")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
