package service

import (
	"context"
	"errors"
	"time"

	"coachsync/wellness-app/internal/domain"
	"coachsync/wellness-app/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAssignmentAlreadyExists = errors.New("an assignment already exists for this client, form and week")
	ErrResponseNotFound        = errors.New("response not found")
)

// CreateAssignmentInput is the scheduler-facing input for creating the first
// week of a recurring check-in schedule. Later weeks materialize lazily on
// submission.
type CreateAssignmentInput struct {
	ClientID      primitive.ObjectID
	CoachID       primitive.ObjectID
	FormID        primitive.ObjectID
	TotalWeeks    int
	DueDate       time.Time
	CheckInWindow domain.CheckInWindow
}

// AssignmentService covers the read/write glue around the submission engine:
// creating week-1 assignments and serving coach review screens.
type AssignmentService interface {
	CreateAssignment(ctx context.Context, input CreateAssignmentInput) (*domain.Assignment, error)
	GetClientAssignments(ctx context.Context, clientID primitive.ObjectID) ([]domain.Assignment, error)
	GetResponse(ctx context.Context, id primitive.ObjectID) (*domain.Response, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	responseRepo   repository.ResponseRepository
}

// NewAssignmentService creates a new instance of assignmentService.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, responseRepo repository.ResponseRepository) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		responseRepo:   responseRepo,
	}
}

func (s *assignmentService) CreateAssignment(ctx context.Context, input CreateAssignmentInput) (*domain.Assignment, error) {
	assignment := &domain.Assignment{
		ExternalID:    uuid.NewString(),
		ClientID:      input.ClientID,
		CoachID:       input.CoachID,
		FormID:        input.FormID,
		RecurringWeek: 1,
		TotalWeeks:    input.TotalWeeks,
		DueDate:       domain.NormalizeDueDate(input.DueDate),
		CheckInWindow: input.CheckInWindow,
		Status:        domain.StatusPending,
	}

	if _, err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAssignmentAlreadyExists
		}
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) GetClientAssignments(ctx context.Context, clientID primitive.ObjectID) ([]domain.Assignment, error) {
	return s.assignmentRepo.GetByClientID(ctx, clientID)
}

func (s *assignmentService) GetResponse(ctx context.Context, id primitive.ObjectID) (*domain.Response, error) {
	response, err := s.responseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	return response, nil
}
