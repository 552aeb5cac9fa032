// Package sideeffect fans out the best-effort triggers that follow a new
// check-in completion. Every trigger is isolated: a failure is logged and
// swallowed, and the submission result the caller already holds is never
// affected. There is no durable retry; execution is at-most-once.
package sideeffect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coachsync/wellness-app/internal/domain"
	"coachsync/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CompletedSubmission carries everything the triggers need from a freshly
// completed check-in. Fired only for new completions, never for the
// idempotent already-completed branch.
type CompletedSubmission struct {
	AssignmentID primitive.ObjectID
	ResponseID   primitive.ObjectID
	ClientID     primitive.ObjectID
	CoachID      primitive.ObjectID
	FormID       primitive.ObjectID
	Score        int
	SubmittedAt  time.Time
}

// Mailer sends the client-facing confirmation email.
type Mailer interface {
	SendCheckInConfirmation(ctx context.Context, toName, toEmail string, score int) error
}

// Cache invalidates cached dashboard entries.
type Cache interface {
	Delete(ctx context.Context, keys ...string) error
}

// GoalUpdater recomputes goal progress for a client after a new score lands.
type GoalUpdater interface {
	RecomputeForClient(ctx context.Context, clientID primitive.ObjectID, score int) error
}

// Dispatcher runs the post-completion trigger fan-out.
type Dispatcher struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	mailer           Mailer
	cache            Cache
	goals            GoalUpdater
	logger           *zap.Logger
	timeout          time.Duration
}

// NewDispatcher creates a Dispatcher. Any collaborator may be nil; its
// trigger is then skipped.
func NewDispatcher(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	mailer Mailer,
	cache Cache,
	goals GoalUpdater,
	logger *zap.Logger,
	timeout time.Duration,
) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		cache:            cache,
		goals:            goals,
		logger:           logger,
		timeout:          timeout,
	}
}

// Dispatch runs all triggers for one completed submission. It uses its own
// detached context so it keeps working after the caller's request context is
// gone; callers invoke it from a goroutine and never wait on it.
func (d *Dispatcher) Dispatch(sub CompletedSubmission) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	d.run(ctx, "coach_notification", sub, d.notifyCoach)
	d.run(ctx, "client_confirmation_email", sub, d.emailClient)
	d.run(ctx, "dashboard_cache_invalidation", sub, d.invalidateDashboard)
	d.run(ctx, "goal_progress_recompute", sub, d.recomputeGoals)
}

// run executes one trigger, containing both errors and panics.
func (d *Dispatcher) run(ctx context.Context, name string, sub CompletedSubmission, fn func(ctx context.Context, sub CompletedSubmission) error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("side-effect trigger panicked",
				zap.String("trigger", name),
				zap.String("responseId", sub.ResponseID.Hex()),
				zap.Any("panic", r))
		}
	}()

	if err := fn(ctx, sub); err != nil {
		d.logger.Warn("side-effect trigger failed",
			zap.String("trigger", name),
			zap.String("responseId", sub.ResponseID.Hex()),
			zap.Error(err))
	}
}

func (d *Dispatcher) notifyCoach(ctx context.Context, sub CompletedSubmission) error {
	if d.notificationRepo == nil {
		return nil
	}
	_, err := d.notificationRepo.Create(ctx, &domain.Notification{
		UserID:       sub.CoachID,
		ClientID:     sub.ClientID,
		AssignmentID: sub.AssignmentID,
		ResponseID:   sub.ResponseID,
		Type:         domain.NotificationCheckInCompleted,
		Message:      fmt.Sprintf("A client completed their check-in with a score of %d", sub.Score),
		Score:        sub.Score,
	})
	return err
}

func (d *Dispatcher) emailClient(ctx context.Context, sub CompletedSubmission) error {
	if d.mailer == nil || d.userRepo == nil {
		return nil
	}
	client, err := d.userRepo.GetByID(ctx, sub.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("client %s not found for confirmation email", sub.ClientID.Hex())
		}
		return err
	}
	return d.mailer.SendCheckInConfirmation(ctx, client.Name, client.Email, sub.Score)
}

func (d *Dispatcher) invalidateDashboard(ctx context.Context, sub CompletedSubmission) error {
	if d.cache == nil {
		return nil
	}
	return d.cache.Delete(ctx, DashboardKey(sub.ClientID.Hex()))
}

func (d *Dispatcher) recomputeGoals(ctx context.Context, sub CompletedSubmission) error {
	if d.goals == nil {
		return nil
	}
	return d.goals.RecomputeForClient(ctx, sub.ClientID, sub.Score)
}

// DashboardKey is the cache key for a client's coach-facing dashboard entry.
func DashboardKey(clientID string) string {
	return "dashboard:" + clientID
}
