package service

import (
	"context"
	"math"

	"coachsync/wellness-app/internal/repository"
	"coachsync/wellness-app/internal/sideeffect"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// goalService recomputes goal progress from check-in scores. It runs inside
// the side-effect dispatcher's failure domain, so its errors are logged and
// never surfaced to the submitting client.
type goalService struct {
	goalRepo repository.GoalRepository
}

// NewGoalService creates the goal-progress updater used by the dispatcher.
func NewGoalService(goalRepo repository.GoalRepository) sideeffect.GoalUpdater {
	return &goalService{goalRepo: goalRepo}
}

// RecomputeForClient updates every active goal of the client with the latest
// score. Progress is the score's share of the goal target, capped at 100.
func (s *goalService) RecomputeForClient(ctx context.Context, clientID primitive.ObjectID, score int) error {
	goals, err := s.goalRepo.GetActiveByClientID(ctx, clientID)
	if err != nil {
		return err
	}

	for _, goal := range goals {
		progress := 100
		if goal.TargetScore > 0 {
			progress = int(math.Round(float64(score) / float64(goal.TargetScore) * 100))
			if progress > 100 {
				progress = 100
			}
		}
		if err := s.goalRepo.UpdateProgress(ctx, goal.ID, score, goal.CheckInsCount+1, progress); err != nil {
			return err
		}
	}
	return nil
}
