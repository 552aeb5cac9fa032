package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"coachsync/wellness-app/internal/domain"
	"coachsync/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrInvalidReference   = errors.New("assignment reference is required")
)

// AssignmentContext is what a reference resolves to: either a persisted
// assignment or a virtual future week of a recurring schedule that has never
// been materialized. Only the submission service promotes virtual contexts
// into real assignments.
type AssignmentContext struct {
	IsVirtual  bool
	Assignment *domain.Assignment // set when the instance exists in the store
	Base       *domain.Assignment // set for virtual instances: the schedule's base assignment
	Week       int                // recurring week number, virtual instances only
	DueDate    time.Time
}

func (c *AssignmentContext) ClientID() primitive.ObjectID {
	if c.IsVirtual {
		return c.Base.ClientID
	}
	return c.Assignment.ClientID
}

func (c *AssignmentContext) CoachID() primitive.ObjectID {
	if c.IsVirtual {
		return c.Base.CoachID
	}
	return c.Assignment.CoachID
}

func (c *AssignmentContext) FormID() primitive.ObjectID {
	if c.IsVirtual {
		return c.Base.FormID
	}
	return c.Assignment.FormID
}

func (c *AssignmentContext) Window() domain.CheckInWindow {
	if c.IsVirtual {
		return c.Base.CheckInWindow
	}
	return c.Assignment.CheckInWindow
}

func (c *AssignmentContext) Completed() bool {
	return !c.IsVirtual && c.Assignment.Status == domain.StatusCompleted
}

// Status reports the lifecycle status for client-facing output. Virtual
// instances are "virtual-pending": owed, but with no record yet.
func (c *AssignmentContext) Status() string {
	if c.IsVirtual {
		return "virtual-pending"
	}
	return string(c.Assignment.Status)
}

// ResolverService resolves an assignment reference, which may address a real
// record or a virtual future week of a recurring schedule.
type ResolverService interface {
	Resolve(ctx context.Context, reference string) (*AssignmentContext, error)
}

type resolverService struct {
	assignmentRepo repository.AssignmentRepository
}

// NewResolverService creates a new instance of resolverService.
func NewResolverService(assignmentRepo repository.AssignmentRepository) ResolverService {
	return &resolverService{assignmentRepo: assignmentRepo}
}

// Resolve is read-only: it never writes, even for virtual weeks.
func (s *resolverService) Resolve(ctx context.Context, reference string) (*AssignmentContext, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrInvalidReference
	}

	base, week, virtual := domain.ParseReference(reference)
	if !virtual {
		// Plain reference: primary key first, external id as fallback.
		assignment, err := s.lookup(ctx, reference, false)
		if err != nil {
			return nil, err
		}
		return &AssignmentContext{Assignment: assignment, DueDate: assignment.DueDate}, nil
	}

	// Virtual week pattern: the base resolves by external id first, primary
	// key second.
	baseAssignment, err := s.lookup(ctx, base, true)
	if err != nil {
		return nil, err
	}

	// The week may already have been materialized by an earlier submission;
	// in that case it is addressed like any persisted assignment.
	existing, err := s.assignmentRepo.GetByWeek(ctx, baseAssignment.ClientID, baseAssignment.FormID, week)
	if err == nil {
		return &AssignmentContext{Assignment: existing, DueDate: existing.DueDate}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return &AssignmentContext{
		IsVirtual: true,
		Base:      baseAssignment,
		Week:      week,
		DueDate:   baseAssignment.DueDateForWeek(week),
	}, nil
}

// lookup tries both id spaces for a reference; the first hit wins.
func (s *resolverService) lookup(ctx context.Context, reference string, externalFirst bool) (*domain.Assignment, error) {
	byExternalID := func() (*domain.Assignment, error) {
		return s.assignmentRepo.GetByExternalID(ctx, reference)
	}
	byPrimaryKey := func() (*domain.Assignment, error) {
		id, err := primitive.ObjectIDFromHex(reference)
		if err != nil {
			return nil, repository.ErrNotFound
		}
		return s.assignmentRepo.GetByID(ctx, id)
	}

	first, second := byPrimaryKey, byExternalID
	if externalFirst {
		first, second = byExternalID, byPrimaryKey
	}

	assignment, err := first()
	if err == nil {
		return assignment, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	assignment, err = second()
	if err == nil {
		return assignment, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAssignmentNotFound
	}
	return nil, err
}
