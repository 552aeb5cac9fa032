package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"coachsync/wellness-app/internal/checkin"
	"coachsync/wellness-app/internal/domain"
	"coachsync/wellness-app/internal/repository"
	"coachsync/wellness-app/internal/sideeffect"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrEmptySubmission    = errors.New("submission requires at least one response")
	ErrSubmissionConflict = errors.New("submission lost a concurrent race and the winner is not visible yet")
)

// SubmissionPayload is the caller's input for one check-in submission.
type SubmissionPayload struct {
	Responses []domain.QuestionResponse
	Score     *int // Caller-supplied aggregate; recomputed server-side, mismatches are logged
}

// SubmissionResult is what a submission returns. AlreadyCompleted marks the
// idempotent branch: the original responseId and score, with no new writes.
type SubmissionResult struct {
	Success          bool                 `json:"success"`
	AssignmentID     primitive.ObjectID   `json:"assignmentId"`
	ResponseID       primitive.ObjectID   `json:"responseId"`
	Score            int                  `json:"score"`
	WindowStatus     checkin.WindowStatus `json:"windowStatus,omitempty"`
	AlreadyCompleted bool                 `json:"alreadyCompleted,omitempty"`
}

// Dispatcher is the decoupled failure domain for post-completion triggers.
type Dispatcher interface {
	Dispatch(sub sideeffect.CompletedSubmission)
}

// SubmissionService is the exactly-once state transition for check-in
// assignments: pending (or virtual) to completed.
type SubmissionService interface {
	Submit(ctx context.Context, reference string, payload SubmissionPayload) (*SubmissionResult, error)
}

type submissionService struct {
	resolver       ResolverService
	assignmentRepo repository.AssignmentRepository
	responseRepo   repository.ResponseRepository
	txn            repository.TxnRunner
	dispatcher     Dispatcher
	logger         *zap.Logger
	now            func() time.Time
}

// NewSubmissionService creates a new instance of submissionService.
func NewSubmissionService(
	resolver ResolverService,
	assignmentRepo repository.AssignmentRepository,
	responseRepo repository.ResponseRepository,
	txn repository.TxnRunner,
	dispatcher Dispatcher,
	logger *zap.Logger,
) SubmissionService {
	return &submissionService{
		resolver:       resolver,
		assignmentRepo: assignmentRepo,
		responseRepo:   responseRepo,
		txn:            txn,
		dispatcher:     dispatcher,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Submit resolves the reference, classifies the window (informational only),
// scores the payload and commits the completion exactly once. The response
// create and the assignment write share one store transaction, so a failure
// mid-transition never leaves an orphaned response.
func (s *submissionService) Submit(ctx context.Context, reference string, payload SubmissionPayload) (*SubmissionResult, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrInvalidReference
	}
	if len(payload.Responses) == 0 {
		return nil, ErrEmptySubmission
	}

	actx, err := s.resolver.Resolve(ctx, reference)
	if err != nil {
		return nil, err
	}

	if actx.Completed() {
		// Freshness check: the resolved context may be stale relative to a
		// concurrent submission, so act on the current persisted state.
		fresh, err := s.assignmentRepo.GetByID(ctx, actx.Assignment.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrAssignmentNotFound
			}
			return nil, err
		}
		if fresh.Status == domain.StatusCompleted {
			return completedResult(fresh), nil
		}
		actx.Assignment = fresh
	}

	now := s.now()

	// Advisory only. An afterWindow submission still succeeds; the status is
	// surfaced for client messaging ("may be reviewed next period").
	windowStatus := checkin.Classify(actx.Window(), actx.DueDate, now)

	score, answered := checkin.Score(payload.Responses)
	if payload.Score != nil && *payload.Score != score {
		s.logger.Warn("caller-supplied score differs from recomputed score, keeping recomputed value",
			zap.String("reference", reference),
			zap.Int("callerScore", *payload.Score),
			zap.Int("computedScore", score))
	}

	response := &domain.Response{
		ExternalID:        uuid.NewString(),
		ClientID:          actx.ClientID(),
		FormID:            actx.FormID(),
		Responses:         payload.Responses,
		Score:             score,
		TotalQuestions:    len(payload.Responses),
		AnsweredQuestions: answered,
		SubmittedAt:       now,
		Status:            "completed",
	}
	if !actx.IsVirtual {
		response.AssignmentID = actx.Assignment.ID
	}

	var assignmentID primitive.ObjectID
	txnErr := s.txn.WithinTransaction(ctx, func(tc context.Context) error {
		responseID, err := s.responseRepo.Create(tc, response)
		if err != nil {
			return err
		}

		if actx.IsVirtual {
			// Materialize the virtual week. The unique
			// (clientId, formId, recurringWeek) index makes this the
			// exclusion point: a concurrent materialization loses with
			// ErrDuplicateKey and the whole transaction, response included,
			// rolls back.
			materialized := &domain.Assignment{
				ExternalID:    uuid.NewString(),
				ClientID:      actx.Base.ClientID,
				CoachID:       actx.Base.CoachID,
				FormID:        actx.Base.FormID,
				RecurringWeek: actx.Week,
				TotalWeeks:    actx.Base.TotalWeeks,
				DueDate:       actx.DueDate,
				CheckInWindow: actx.Base.CheckInWindow,
				Status:        domain.StatusCompleted,
				ResponseID:    &responseID,
				Score:         &score,
			}
			id, err := s.assignmentRepo.Create(tc, materialized)
			if err != nil {
				return err
			}
			assignmentID = id
		} else {
			if err := s.assignmentRepo.CompareAndComplete(tc, actx.Assignment.ID, domain.StatusPending, responseID, score); err != nil {
				return err
			}
			assignmentID = actx.Assignment.ID
		}

		// Back-fill the response with its final owner.
		return s.responseRepo.SetAssignmentID(tc, responseID, assignmentID)
	})
	if txnErr != nil {
		if errors.Is(txnErr, repository.ErrDuplicateKey) || errors.Is(txnErr, repository.ErrStatusConflict) {
			return s.lostRace(ctx, actx)
		}
		if errors.Is(txnErr, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, txnErr
	}

	result := &SubmissionResult{
		Success:      true,
		AssignmentID: assignmentID,
		ResponseID:   response.ID,
		Score:        score,
		WindowStatus: windowStatus,
	}

	if s.dispatcher != nil {
		go s.dispatcher.Dispatch(sideeffect.CompletedSubmission{
			AssignmentID: assignmentID,
			ResponseID:   response.ID,
			ClientID:     actx.ClientID(),
			CoachID:      actx.CoachID(),
			FormID:       actx.FormID(),
			Score:        score,
			SubmittedAt:  now,
		})
	}

	return result, nil
}

// lostRace handles a submission that lost the conditional write: the winner
// committed (or is committing) the same slot, so return its result through
// the idempotent branch. The winner's commit may not be visible yet, hence
// the short bounded retry.
func (s *submissionService) lostRace(ctx context.Context, actx *AssignmentContext) (*SubmissionResult, error) {
	for attempt := 0; attempt < 3; attempt++ {
		var winner *domain.Assignment
		var err error
		if actx.IsVirtual {
			winner, err = s.assignmentRepo.GetByWeek(ctx, actx.Base.ClientID, actx.Base.FormID, actx.Week)
		} else {
			winner, err = s.assignmentRepo.GetByID(ctx, actx.Assignment.ID)
		}
		if err == nil && winner.Status == domain.StatusCompleted {
			return completedResult(winner), nil
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil, ErrSubmissionConflict
}

func completedResult(a *domain.Assignment) *SubmissionResult {
	result := &SubmissionResult{
		Success:          true,
		AssignmentID:     a.ID,
		AlreadyCompleted: true,
	}
	if a.ResponseID != nil {
		result.ResponseID = *a.ResponseID
	}
	if a.Score != nil {
		result.Score = *a.Score
	}
	return result
}
