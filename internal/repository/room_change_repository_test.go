package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelworks/hms-api/internal/models"
)

func TestRoomChangeRepositoryApprove(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomChangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-2").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM student_rooms WHERE room_id = $1 AND student_id <> $2")).
		WithArgs("room-2", "student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_rooms SET room_id = $1")).
		WithArgs("room-2", sqlmock.AnyArg(), "student-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE room_change_requests")).
		WithArgs(models.RoomChangeApproved, nil, sqlmock.AnyArg(), "req-1", models.RoomChangePending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Approve(context.Background(), "req-1", "student-1", "room-2", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomChangeRepositoryApproveRoomFull(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomChangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-2").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("room-2", "student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), "req-1", "student-1", "room-2", nil)
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomChangeRepositoryApproveUnhoused(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomChangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-2").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("room-2", "student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_rooms SET room_id = $1")).
		WithArgs("room-2", sqlmock.AnyArg(), "student-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), "req-1", "student-1", "room-2", nil)
	assert.ErrorIs(t, err, ErrNoActiveAssignment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomChangeRepositoryApproveAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomChangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-2").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("room-2", "student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_rooms SET room_id = $1")).
		WithArgs("room-2", sqlmock.AnyArg(), "student-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE room_change_requests")).
		WithArgs(models.RoomChangeApproved, nil, sqlmock.AnyArg(), "req-1", models.RoomChangePending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), "req-1", "student-1", "room-2", nil)
	assert.ErrorIs(t, err, ErrRequestNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomChangeRepositoryReject(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomChangeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE room_change_requests")).
		WithArgs(models.RoomChangeRejected, sqlmock.AnyArg(), "req-1", models.RoomChangePending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Reject(context.Background(), "req-1")
	require.NoError(t, err)
}

func TestRoomChangeRepositoryRejectAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomChangeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE room_change_requests")).
		WithArgs(models.RoomChangeRejected, sqlmock.AnyArg(), "req-1", models.RoomChangePending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Reject(context.Background(), "req-1")
	assert.ErrorIs(t, err, ErrRequestNotPending)
}

func TestRoomChangeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomChangeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO room_change_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := &models.RoomChangeRequest{
		StudentID:   "student-1",
		Reason:      "closer to the library",
		CurrentRoom: "A-101",
		DesiredRoom: "A-102",
	}
	err := repo.Create(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.RoomChangePending, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomChangeRepositoryCreateDuplicatePending(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomChangeRepository(db)

	// The insert is filtered out when a pending row already exists for
	// the student, so zero rows signal the duplicate.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO room_change_requests")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), &models.RoomChangeRequest{
		StudentID:   "student-1",
		Reason:      "still want to move",
		CurrentRoom: "A-101",
		DesiredRoom: "A-102",
	})
	assert.ErrorIs(t, err, ErrDuplicatePending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
