package service

import (
	"context"
	"testing"
	"time"

	"coachsync/wellness-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func baseAssignmentFixture() domain.Assignment {
	return domain.Assignment{
		ExternalID:    "assignment-base",
		ClientID:      primitive.NewObjectID(),
		CoachID:       primitive.NewObjectID(),
		FormID:        primitive.NewObjectID(),
		RecurringWeek: 1,
		TotalWeeks:    12,
		DueDate:       time.Date(2025, 3, 2, 23, 59, 59, 0, time.UTC),
		Status:        domain.StatusPending,
	}
}

func TestResolveByPrimaryKey(t *testing.T) {
	repo := newFakeAssignmentRepo()
	id := repo.seed(baseAssignmentFixture())
	svc := NewResolverService(repo)

	actx, err := svc.Resolve(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.False(t, actx.IsVirtual)
	assert.Equal(t, id, actx.Assignment.ID)
	assert.Equal(t, "pending", actx.Status())
}

func TestResolveByExternalIDFallback(t *testing.T) {
	repo := newFakeAssignmentRepo()
	repo.seed(baseAssignmentFixture())
	svc := NewResolverService(repo)

	actx, err := svc.Resolve(context.Background(), "assignment-base")
	require.NoError(t, err)
	assert.False(t, actx.IsVirtual)
	assert.Equal(t, "assignment-base", actx.Assignment.ExternalID)
}

func TestResolveVirtualWeek(t *testing.T) {
	repo := newFakeAssignmentRepo()
	base := baseAssignmentFixture()
	repo.seed(base)
	svc := NewResolverService(repo)

	actx, err := svc.Resolve(context.Background(), "assignment-base_week_3")
	require.NoError(t, err)
	assert.True(t, actx.IsVirtual)
	assert.Nil(t, actx.Assignment)
	assert.Equal(t, 3, actx.Week)
	assert.Equal(t, "virtual-pending", actx.Status())
	// Due date projects forward from the base: week 1 + 14 days.
	assert.Equal(t, time.Date(2025, 3, 16, 23, 59, 59, 0, time.UTC), actx.DueDate)
	assert.Equal(t, base.ClientID, actx.ClientID())
	assert.Equal(t, base.CoachID, actx.CoachID())
}

func TestResolveVirtualBaseByPrimaryKey(t *testing.T) {
	repo := newFakeAssignmentRepo()
	fixture := baseAssignmentFixture()
	fixture.ExternalID = "other"
	id := repo.seed(fixture)
	svc := NewResolverService(repo)

	actx, err := svc.Resolve(context.Background(), id.Hex()+"_week_2")
	require.NoError(t, err)
	assert.True(t, actx.IsVirtual)
	assert.Equal(t, id, actx.Base.ID)
}

func TestResolveMaterializedWeekIsNotVirtual(t *testing.T) {
	repo := newFakeAssignmentRepo()
	base := baseAssignmentFixture()
	repo.seed(base)

	week3 := base
	week3.ID = primitive.NilObjectID
	week3.ExternalID = "assignment-week-3"
	week3.RecurringWeek = 3
	week3.Status = domain.StatusCompleted
	week3ID := repo.seed(week3)

	svc := NewResolverService(repo)
	actx, err := svc.Resolve(context.Background(), "assignment-base_week_3")
	require.NoError(t, err)
	assert.False(t, actx.IsVirtual)
	assert.Equal(t, week3ID, actx.Assignment.ID)
	assert.True(t, actx.Completed())
}

func TestResolveWeekOneSuffixIsDirect(t *testing.T) {
	repo := newFakeAssignmentRepo()
	fixture := baseAssignmentFixture()
	fixture.ExternalID = "assignment-base_week_1"
	repo.seed(fixture)
	svc := NewResolverService(repo)

	actx, err := svc.Resolve(context.Background(), "assignment-base_week_1")
	require.NoError(t, err)
	assert.False(t, actx.IsVirtual)
}

func TestResolveUnknownReference(t *testing.T) {
	svc := NewResolverService(newFakeAssignmentRepo())

	_, err := svc.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = svc.Resolve(context.Background(), "nope_week_4")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestResolveEmptyReference(t *testing.T) {
	svc := NewResolverService(newFakeAssignmentRepo())

	_, err := svc.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidReference)
}
