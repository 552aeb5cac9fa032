package sideeffect

import (
	"context"
	"errors"
	"sync"
	"testing"

	"coachsync/wellness-app/internal/domain"
	"coachsync/wellness-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type stubNotificationRepo struct {
	mu      sync.Mutex
	created []domain.Notification
}

func (s *stubNotificationRepo) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	s.created = append(s.created, *n)
	return n.ID, nil
}

type stubUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func (s *stubUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

type stubMailer struct {
	mu    sync.Mutex
	sent  []string
	err   error
	panic bool
}

func (s *stubMailer) SendCheckInConfirmation(ctx context.Context, toName, toEmail string, score int) error {
	if s.panic {
		panic("mailer exploded")
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, toEmail)
	return nil
}

type stubCache struct {
	mu      sync.Mutex
	deleted []string
}

func (s *stubCache) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, keys...)
	return nil
}

type stubGoalUpdater struct {
	mu    sync.Mutex
	calls int
	score int
}

func (s *stubGoalUpdater) RecomputeForClient(ctx context.Context, clientID primitive.ObjectID, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.score = score
	return nil
}

func completedSubmissionFixture() CompletedSubmission {
	return CompletedSubmission{
		AssignmentID: primitive.NewObjectID(),
		ResponseID:   primitive.NewObjectID(),
		ClientID:     primitive.NewObjectID(),
		CoachID:      primitive.NewObjectID(),
		FormID:       primitive.NewObjectID(),
		Score:        80,
	}
}

func TestDispatchRunsAllTriggers(t *testing.T) {
	sub := completedSubmissionFixture()
	notifications := &stubNotificationRepo{}
	users := &stubUserRepo{users: map[primitive.ObjectID]domain.User{
		sub.ClientID: {ID: sub.ClientID, Name: "Client", Email: "client@example.com"},
	}}
	mailer := &stubMailer{}
	cache := &stubCache{}
	goals := &stubGoalUpdater{}

	d := NewDispatcher(notifications, users, mailer, cache, goals, zap.NewNop(), 0)
	d.Dispatch(sub)

	require.Len(t, notifications.created, 1)
	assert.Equal(t, sub.CoachID, notifications.created[0].UserID)
	assert.Equal(t, domain.NotificationCheckInCompleted, notifications.created[0].Type)
	assert.Equal(t, 80, notifications.created[0].Score)

	assert.Equal(t, []string{"client@example.com"}, mailer.sent)
	assert.Equal(t, []string{DashboardKey(sub.ClientID.Hex())}, cache.deleted)
	assert.Equal(t, 1, goals.calls)
	assert.Equal(t, 80, goals.score)
}

func TestDispatchFailingTriggerDoesNotBlockOthers(t *testing.T) {
	sub := completedSubmissionFixture()
	notifications := &stubNotificationRepo{}
	users := &stubUserRepo{users: map[primitive.ObjectID]domain.User{
		sub.ClientID: {ID: sub.ClientID, Email: "client@example.com"},
	}}
	mailer := &stubMailer{err: errors.New("smtp down")}
	cache := &stubCache{}
	goals := &stubGoalUpdater{}

	d := NewDispatcher(notifications, users, mailer, cache, goals, zap.NewNop(), 0)
	d.Dispatch(sub)

	assert.Len(t, notifications.created, 1)
	assert.Empty(t, mailer.sent)
	assert.Len(t, cache.deleted, 1)
	assert.Equal(t, 1, goals.calls)
}

func TestDispatchContainsPanics(t *testing.T) {
	sub := completedSubmissionFixture()
	notifications := &stubNotificationRepo{}
	users := &stubUserRepo{users: map[primitive.ObjectID]domain.User{
		sub.ClientID: {ID: sub.ClientID},
	}}
	mailer := &stubMailer{panic: true}
	cache := &stubCache{}

	d := NewDispatcher(notifications, users, mailer, cache, nil, zap.NewNop(), 0)

	assert.NotPanics(t, func() { d.Dispatch(sub) })
	assert.Len(t, notifications.created, 1)
	assert.Len(t, cache.deleted, 1)
}

func TestDispatchSkipsNilCollaborators(t *testing.T) {
	d := NewDispatcher(nil, nil, nil, nil, nil, zap.NewNop(), 0)
	assert.NotPanics(t, func() { d.Dispatch(completedSubmissionFixture()) })
}

func TestDispatchMissingClientOnlyFailsEmail(t *testing.T) {
	sub := completedSubmissionFixture()
	users := &stubUserRepo{users: map[primitive.ObjectID]domain.User{}}
	mailer := &stubMailer{}
	goals := &stubGoalUpdater{}

	d := NewDispatcher(nil, users, mailer, nil, goals, zap.NewNop(), 0)
	d.Dispatch(sub)

	assert.Empty(t, mailer.sent)
	assert.Equal(t, 1, goals.calls)
}
