package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelworks/hms-api/internal/models"
)

func TestRoomRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Room{Name: "A-101", FloorID: "floor-1", Capacity: 3})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRoomRepositoryFindByName(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, floor_id, capacity, created_at FROM rooms WHERE name = $1")).
		WithArgs("A-101").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "floor_id", "capacity", "created_at"}).
			AddRow("room-1", "A-101", "floor-1", 3, now))

	room, err := repo.FindByName(context.Background(), "A-101")
	require.NoError(t, err)
	assert.Equal(t, "room-1", room.ID)
	assert.Equal(t, 3, room.Capacity)
}

func TestRoomRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, floor_id, capacity, created_at FROM rooms WHERE id = $1")).
		WithArgs("room-99").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "room-99")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRoomRepositoryCountOccupants(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM student_rooms WHERE room_id = $1")).
		WithArgs("room-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountOccupants(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRoomRepositoryListOccupancy(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT f.name AS floor_name")).
		WillReturnRows(sqlmock.NewRows([]string{"floor_name", "room_name", "capacity", "occupants"}).
			AddRow("First Floor", "A-101", 3, 2).
			AddRow("First Floor", "A-102", 2, 0))

	rows, err := repo.ListOccupancy(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A-101", rows[0].RoomName)
	assert.Equal(t, 2, rows[0].Occupants)
}
