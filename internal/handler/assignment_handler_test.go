package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hostelworks/hms-api/internal/middleware"
	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/repository"
	"github.com/hostelworks/hms-api/internal/service"
	"github.com/hostelworks/hms-api/pkg/response"
)

type roomStoreStub struct {
	rooms map[string]*models.Room
}

func (s *roomStoreStub) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if room, ok := s.rooms[id]; ok {
		clone := *room
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *roomStoreStub) FindByName(ctx context.Context, name string) (*models.Room, error) {
	for _, room := range s.rooms {
		if room.Name == name {
			clone := *room
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

type assignmentStoreStub struct {
	mu        sync.Mutex
	rooms     map[string]*models.Room
	byRoom    map[string][]string
	byStudent map[string]string
}

func newAssignmentStoreStub(rooms map[string]*models.Room) *assignmentStoreStub {
	return &assignmentStoreStub{
		rooms:     rooms,
		byRoom:    make(map[string][]string),
		byStudent: make(map[string]string),
	}
}

func (s *assignmentStoreStub) Assign(ctx context.Context, studentID, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return sql.ErrNoRows
	}
	if _, taken := s.byStudent[studentID]; taken {
		return repository.ErrAlreadyAssigned
	}
	if len(s.byRoom[roomID]) >= room.Capacity {
		return repository.ErrRoomFull
	}
	s.byRoom[roomID] = append(s.byRoom[roomID], studentID)
	s.byStudent[studentID] = roomID
	return nil
}

func (s *assignmentStoreStub) FindDetailByStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roomID, ok := s.byStudent[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	room := s.rooms[roomID]
	return &models.AssignmentDetail{
		StudentRoom:  models.StudentRoom{StudentID: studentID, RoomID: roomID},
		RoomName:     room.Name,
		RoomCapacity: room.Capacity,
	}, nil
}

func (s *assignmentStoreStub) ListByRoom(ctx context.Context, roomID string) ([]models.AssignmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var details []models.AssignmentDetail
	for _, studentID := range s.byRoom[roomID] {
		details = append(details, models.AssignmentDetail{
			StudentRoom: models.StudentRoom{StudentID: studentID, RoomID: roomID},
		})
	}
	return details, nil
}

type provisionerStub struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (s *provisionerStub) ProvisionStudent(ctx context.Context, fullName, email string) (*models.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]*models.User)
	}
	if user, ok := s.users[email]; ok {
		clone := *user
		return &clone, "", nil
	}
	user := &models.User{ID: uuid.NewString(), Email: email, FullName: fullName, Role: models.RoleStudent, Active: true}
	s.users[email] = user
	clone := *user
	return &clone, "generated-pass", nil
}

var errMailDown = errors.New("smtp down")

type mailerStub struct {
	failWith error
	sent     int
}

func (s *mailerStub) Send(ctx context.Context, to, subject, htmlBody string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.sent++
	return nil
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func buildAssignmentRouter(mailer *mailerStub) (*gin.Engine, *assignmentStoreStub) {
	gin.SetMode(gin.TestMode)

	rooms := map[string]*models.Room{
		"room-1": {ID: "room-1", Name: "A-101", FloorID: "floor-1", Capacity: 1},
	}
	store := newAssignmentStoreStub(rooms)
	svc := service.NewAssignmentService(store, &roomStoreStub{rooms: rooms}, &provisionerStub{}, mailer, nil, nil)
	h := NewAssignmentHandler(svc, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(middleware.ContextUserKey, &models.JWTClaims{
				UserID: c.GetHeader("X-Test-User"),
				Role:   models.UserRole(role),
			})
		}
		c.Next()
	})
	admin := router.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/room/assign", h.Assign)
	student := router.Group("/student", middleware.RequireRoles(models.RoleStudent))
	student.GET("/room", h.MyRoom)
	return router, store
}

func assignPayload(name, email string) *bytes.Buffer {
	body, _ := json.Marshal(models.AssignRoomRequest{
		RoomName:     "A-101",
		StudentName:  name,
		StudentEmail: email,
	})
	return bytes.NewBuffer(body)
}

func TestAssignRoomEndpoint(t *testing.T) {
	mailer := &mailerStub{}
	router, store := buildAssignmentRouter(mailer)

	t.Run("forbidden for students", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/room/assign", assignPayload("Asha Rao", "asha@example.com"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("unauthorized without claims", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/room/assign", assignPayload("Asha Rao", "asha@example.com"))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("assigns and returns detail", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/room/assign", assignPayload("Asha Rao", "asha@example.com"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)

		var envelope response.Envelope
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		require.Nil(t, envelope.Error)
		require.Empty(t, envelope.Meta)
		require.Contains(t, resp.Body.String(), `"room_name":"A-101"`)
		require.Equal(t, 1, mailer.sent)
	})

	t.Run("room full returns 400 with code", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/room/assign", assignPayload("Ravi Kumar", "ravi@example.com"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		require.Contains(t, resp.Body.String(), `"code":"ROOM_FULL"`)
		require.Len(t, store.byRoom["room-1"], 1)
	})

	t.Run("student sees own room", func(t *testing.T) {
		studentID := store.byRoom["room-1"][0]
		req, _ := http.NewRequest(http.MethodGet, "/student/room", nil)
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		req.Header.Set("X-Test-User", studentID)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"room_name":"A-101"`)
	})

	t.Run("unhoused student gets 404", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/student/room", nil)
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		req.Header.Set("X-Test-User", "unknown-student")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestAssignRoomEndpointMailWarning(t *testing.T) {
	mailer := &mailerStub{failWith: errMailDown}
	router, _ := buildAssignmentRouter(mailer)

	req, _ := http.NewRequest(http.MethodPost, "/admin/room/assign", assignPayload("Asha Rao", "asha@example.com"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Role", string(models.RoleAdmin))
	resp := performRequest(router, req)
	require.Equal(t, http.StatusCreated, resp.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Contains(t, envelope.Meta, "warning")
}
