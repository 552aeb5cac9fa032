package repository

import (
	"context"

	"coachsync/wellness-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound       = RepositoryError("not found")
	ErrDuplicateKey   = RepositoryError("duplicate key")
	ErrStatusConflict = RepositoryError("status conflict")
	ErrUpdateFailed   = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// AssignmentRepository defines the interface for interacting with assignment data.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Assignment, error)
	// GetByWeek looks up the materialized assignment for one recurring slot.
	GetByWeek(ctx context.Context, clientID, formID primitive.ObjectID, week int) (*domain.Assignment, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Assignment, error)
	// CompareAndComplete flips status from expected to completed in a single
	// conditional write, recording the response link and score. Returns
	// ErrStatusConflict when the assignment is no longer in the expected
	// status, ErrNotFound when it does not exist.
	CompareAndComplete(ctx context.Context, id primitive.ObjectID, expected domain.AssignmentStatus, responseID primitive.ObjectID, score int) error
}

// ResponseRepository defines the interface for interacting with submission records.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Response, error)
	// SetAssignmentID back-fills the owning assignment after a virtual week
	// has been materialized. Responses are otherwise never mutated.
	SetAssignmentID(ctx context.Context, id, assignmentID primitive.ObjectID) error
}

// NotificationRepository defines the interface for coach notification records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (primitive.ObjectID, error)
}

// GoalRepository defines the interface for client goal records.
type GoalRepository interface {
	GetActiveByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Goal, error)
	UpdateProgress(ctx context.Context, id primitive.ObjectID, latestScore, checkInsCount, progress int) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// TxnRunner runs fn inside a store-level transaction so that multi-document
// writes (response create + assignment update) commit or abort together.
type TxnRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
