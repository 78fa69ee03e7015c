package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/repository"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/mail"
)

type assignmentRoomRepository interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
	FindByName(ctx context.Context, name string) (*models.Room, error)
}

type assignmentRepository interface {
	Assign(ctx context.Context, studentID, roomID string) error
	FindDetailByStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.AssignmentDetail, error)
}

type studentProvisioner interface {
	ProvisionStudent(ctx context.Context, fullName, email string) (*models.User, string, error)
}

// AssignmentService orchestrates assigning students to rooms.
type AssignmentService struct {
	assignments assignmentRepository
	rooms       assignmentRoomRepository
	users       studentProvisioner
	mailer      mail.Sender
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignments assignmentRepository, rooms assignmentRoomRepository, users studentProvisioner, mailer mail.Sender, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{
		assignments: assignments,
		rooms:       rooms,
		users:       users,
		mailer:      mailer,
		validator:   validate,
		logger:      logger,
	}
}

// Assign places a student into a room. The room is resolved by ID when
// given, by name otherwise. A missing student account is provisioned
// with a generated password. The capacity check and the insert run in
// one transaction inside the repository, so the room can never exceed
// capacity even under concurrent requests. The notification email is
// sent only after the assignment is committed; a mail failure is
// returned as a warning, never as an error.
func (s *AssignmentService) Assign(ctx context.Context, req models.AssignRoomRequest) (*models.AssignmentDetail, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	room, err := s.resolveRoom(ctx, req.RoomID, req.RoomName)
	if err != nil {
		return nil, "", err
	}

	student, password, err := s.users.ProvisionStudent(ctx, req.StudentName, req.StudentEmail)
	if err != nil {
		return nil, "", err
	}

	if err := s.assignments.Assign(ctx, student.ID, room.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomFull):
			return nil, "", appErrors.Clone(appErrors.ErrRoomFull, fmt.Sprintf("room %s is already full", room.Name))
		case errors.Is(err, repository.ErrAlreadyAssigned):
			return nil, "", appErrors.Clone(appErrors.ErrAlreadyAssigned, "student is already assigned to a room")
		case errors.Is(err, sql.ErrNoRows):
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign room")
	}

	warning := s.notifyAssigned(ctx, student, room, password)

	detail, err := s.assignments.FindDetailByStudent(ctx, student.ID)
	if err != nil {
		s.logger.Warn("failed to load assignment detail after assign",
			zap.String("student_id", student.ID), zap.Error(err))
		detail = &models.AssignmentDetail{
			StudentRoom:  models.StudentRoom{StudentID: student.ID, RoomID: room.ID},
			StudentName:  student.FullName,
			StudentEmail: student.Email,
			RoomName:     room.Name,
			RoomCapacity: room.Capacity,
		}
	}
	return detail, warning, nil
}

// RoomAssigned returns the caller's active assignment.
func (s *AssignmentService) RoomAssigned(ctx context.Context, studentID string) (*models.AssignmentDetail, error) {
	detail, err := s.assignments.FindDetailByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active room assignment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return detail, nil
}

// Occupants returns the assignment details for everyone in a room.
func (s *AssignmentService) Occupants(ctx context.Context, roomID string) ([]models.AssignmentDetail, error) {
	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	occupants, err := s.assignments.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occupants")
	}
	return occupants, nil
}

func (s *AssignmentService) resolveRoom(ctx context.Context, id, name string) (*models.Room, error) {
	var (
		room *models.Room
		err  error
	)
	if id != "" {
		room, err = s.rooms.FindByID(ctx, id)
	} else {
		room, err = s.rooms.FindByName(ctx, name)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve room")
	}
	return room, nil
}

func (s *AssignmentService) notifyAssigned(ctx context.Context, student *models.User, room *models.Room, password string) string {
	if s.mailer == nil {
		return ""
	}

	var body string
	if password != "" {
		body = fmt.Sprintf(
			"<p>Hello %s,</p><p>You have been assigned to room %s (capacity %d).</p><p>Your hostel account has been created.</p><p>Email: %s<br>Password: %s</p><p>Please change your password after first login.</p>",
			student.FullName, room.Name, room.Capacity, student.Email, password)
	} else {
		body = fmt.Sprintf(
			"<p>Hello %s,</p><p>You have been assigned to room %s (capacity %d).</p>",
			student.FullName, room.Name, room.Capacity)
	}

	if err := s.mailer.Send(ctx, student.Email, "Hostel room assignment", body); err != nil {
		s.logger.Warn("failed to send assignment email",
			zap.String("student_id", student.ID), zap.Error(err))
		return "room assigned but notification email could not be sent"
	}
	return ""
}
