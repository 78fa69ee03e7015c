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

type roomChangeRepository interface {
	Create(ctx context.Context, req *models.RoomChangeRequest) error
	FindByID(ctx context.Context, id string) (*models.RoomChangeRequest, error)
	List(ctx context.Context, status models.RoomChangeStatus) ([]models.RoomChangeDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.RoomChangeRequest, error)
	Approve(ctx context.Context, requestID, studentID, targetRoomID string, alternateRoom *string) error
	Reject(ctx context.Context, requestID string) error
}

type roomChangeAssignmentRepository interface {
	FindDetailByStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error)
}

type roomChangeUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RoomChangeService manages the room change request workflow.
type RoomChangeService struct {
	requests    roomChangeRepository
	assignments roomChangeAssignmentRepository
	rooms       assignmentRoomRepository
	users       roomChangeUserRepository
	mailer      mail.Sender
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRoomChangeService constructs a RoomChangeService instance.
func NewRoomChangeService(requests roomChangeRepository, assignments roomChangeAssignmentRepository, rooms assignmentRoomRepository, users roomChangeUserRepository, mailer mail.Sender, validate *validator.Validate, logger *zap.Logger) *RoomChangeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoomChangeService{
		requests:    requests,
		assignments: assignments,
		rooms:       rooms,
		users:       users,
		mailer:      mailer,
		validator:   validate,
		logger:      logger,
	}
}

// Submit records a new pending request for the calling student. The
// student must hold an active assignment and must not already have a
// pending request.
func (s *RoomChangeService) Submit(ctx context.Context, studentID string, req models.SubmitRoomChangeRequest) (*models.RoomChangeRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room change payload")
	}

	current, err := s.assignments.FindDetailByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentUnhoused, "you have no active room assignment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	request := &models.RoomChangeRequest{
		StudentID:   studentID,
		Reason:      req.Reason,
		CurrentRoom: current.RoomName,
		DesiredRoom: req.DesiredRoom,
		Status:      models.RoomChangePending,
	}
	// The insert itself enforces one pending request per student, so
	// concurrent submits serialize on the database rather than on a
	// read-then-write check here.
	if err := s.requests.Create(ctx, request); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, appErrors.Clone(appErrors.ErrDuplicatePendingRequest, "you already have a pending room change request")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room change request")
	}
	return request, nil
}

// Decide approves or rejects a pending request. Approval resolves the
// target room (the alternate room when one is given, the desired room
// otherwise) and moves the student in the same transaction that marks
// the request Approved, re-running the capacity check against the
// target room. A decided request cannot be decided again. The outcome
// email is sent after the decision is committed; a mail failure is
// returned as a warning.
func (s *RoomChangeService) Decide(ctx context.Context, req models.DecideRoomChangeRequest) (*models.RoomChangeRequest, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}
	if !models.DecidableStatus(req.Status) {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("status must be %s or %s", models.RoomChangeApproved, models.RoomChangeRejected))
	}

	request, err := s.requests.FindByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "room change request not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request.Status != models.RoomChangePending {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "no pending room change request with this id")
	}

	var targetRoom *models.Room
	switch req.Status {
	case models.RoomChangeApproved:
		targetName := request.DesiredRoom
		if req.AlternateRoom != nil && *req.AlternateRoom != "" {
			targetName = *req.AlternateRoom
		}
		room, err := s.rooms.FindByName(ctx, targetName)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room %s not found", targetName))
			}
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve room")
		}

		if err := s.requests.Approve(ctx, request.ID, request.StudentID, room.ID, req.AlternateRoom); err != nil {
			switch {
			case errors.Is(err, repository.ErrRoomFull):
				return nil, "", appErrors.Clone(appErrors.ErrRoomFull, fmt.Sprintf("room %s is already full", room.Name))
			case errors.Is(err, repository.ErrNoActiveAssignment):
				return nil, "", appErrors.Clone(appErrors.ErrStudentUnhoused, "student has no active room assignment")
			case errors.Is(err, repository.ErrRequestNotPending):
				return nil, "", appErrors.Clone(appErrors.ErrNotFound, "no pending room change request with this id")
			}
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve request")
		}
		targetRoom = room
	case models.RoomChangeRejected:
		if err := s.requests.Reject(ctx, request.ID); err != nil {
			if errors.Is(err, repository.ErrRequestNotPending) {
				return nil, "", appErrors.Clone(appErrors.ErrNotFound, "no pending room change request with this id")
			}
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
		}
	}

	decided, err := s.requests.FindByID(ctx, req.RequestID)
	if err != nil {
		s.logger.Warn("failed to reload decided request", zap.String("request_id", req.RequestID), zap.Error(err))
		decided = request
		decided.Status = req.Status
	}

	warning := s.notifyDecision(ctx, decided, targetRoom)
	return decided, warning, nil
}

// List returns requests for review, optionally filtered by status, with
// current and desired room details attached where the names resolve.
func (s *RoomChangeService) List(ctx context.Context, status models.RoomChangeStatus) ([]models.RoomChangeDetail, error) {
	if status != "" && status != models.RoomChangePending && !models.DecidableStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}

	details, err := s.requests.List(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}

	for i := range details {
		if room, rerr := s.rooms.FindByName(ctx, details[i].CurrentRoom); rerr == nil {
			details[i].CurrentRoomDetails = room
		}
		if room, rerr := s.rooms.FindByName(ctx, details[i].DesiredRoom); rerr == nil {
			details[i].DesiredRoomDetails = room
		}
	}
	return details, nil
}

// ListMine returns the calling student's own requests.
func (s *RoomChangeService) ListMine(ctx context.Context, studentID string) ([]models.RoomChangeRequest, error) {
	reqs, err := s.requests.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return reqs, nil
}

func (s *RoomChangeService) notifyDecision(ctx context.Context, request *models.RoomChangeRequest, room *models.Room) string {
	if s.mailer == nil {
		return ""
	}

	student, err := s.users.FindByID(ctx, request.StudentID)
	if err != nil {
		s.logger.Warn("failed to load student for decision email",
			zap.String("student_id", request.StudentID), zap.Error(err))
		return "request decided but notification email could not be sent"
	}

	var body string
	if request.Status == models.RoomChangeApproved && room != nil {
		body = fmt.Sprintf("<p>Hello %s,</p><p>Your room change request has been approved. You have been moved to room %s (capacity %d).</p>",
			student.FullName, room.Name, room.Capacity)
	} else {
		body = fmt.Sprintf("<p>Hello %s,</p><p>Your room change request has been rejected.</p>", student.FullName)
	}

	if err := s.mailer.Send(ctx, student.Email, "Room change request update", body); err != nil {
		s.logger.Warn("failed to send decision email",
			zap.String("student_id", student.ID), zap.Error(err))
		return "request decided but notification email could not be sent"
	}
	return ""
}
