package service

import (
	"context"
	"sync"
	"time"

	"coachsync/wellness-app/internal/domain"
	"coachsync/wellness-app/internal/repository"
	"coachsync/wellness-app/internal/sideeffect"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the MongoDB implementations' error
// contracts, including the unique (clientId, formId, recurringWeek) index.

type fakeAssignmentRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]domain.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{items: make(map[primitive.ObjectID]domain.Assignment)}
}

func (f *fakeAssignmentRepo) seed(a domain.Assignment) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == primitive.NilObjectID {
		a.ID = primitive.NewObjectID()
	}
	if a.Status == "" {
		a.Status = domain.StatusPending
	}
	f.items[a.ID] = a
	return a.ID
}

func (f *fakeAssignmentRepo) snapshot() map[primitive.ObjectID]domain.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[primitive.ObjectID]domain.Assignment, len(f.items))
	for k, v := range f.items {
		snap[k] = v
	}
	return snap
}

func (f *fakeAssignmentRepo) restore(snap map[primitive.ObjectID]domain.Assignment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = snap
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, a *domain.Assignment) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.ClientID == a.ClientID && existing.FormID == a.FormID && existing.RecurringWeek == a.RecurringWeek {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	a.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = domain.StatusPending
	}
	f.items[a.ID] = *a
	return a.ID, nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.items[id]; ok {
		copied := a
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAssignmentRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.ExternalID == externalID {
			copied := a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAssignmentRepo) GetByWeek(ctx context.Context, clientID, formID primitive.ObjectID, week int) (*domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.ClientID == clientID && a.FormID == formID && a.RecurringWeek == week {
			copied := a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAssignmentRepo) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Assignment
	for _, a := range f.items {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) CompareAndComplete(ctx context.Context, id primitive.ObjectID, expected domain.AssignmentStatus, responseID primitive.ObjectID, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if a.Status != expected {
		return repository.ErrStatusConflict
	}
	a.Status = domain.StatusCompleted
	a.ResponseID = &responseID
	a.Score = &score
	a.UpdatedAt = time.Now().UTC()
	f.items[id] = a
	return nil
}

func (f *fakeAssignmentRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeResponseRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]domain.Response
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{items: make(map[primitive.ObjectID]domain.Response)}
}

func (f *fakeResponseRepo) snapshot() map[primitive.ObjectID]domain.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[primitive.ObjectID]domain.Response, len(f.items))
	for k, v := range f.items {
		snap[k] = v
	}
	return snap
}

func (f *fakeResponseRepo) restore(snap map[primitive.ObjectID]domain.Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = snap
}

func (f *fakeResponseRepo) Create(ctx context.Context, r *domain.Response) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = primitive.NewObjectID()
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = "completed"
	}
	f.items[r.ID] = *r
	return r.ID, nil
}

func (f *fakeResponseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.items[id]; ok {
		copied := r
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeResponseRepo) SetAssignmentID(ctx context.Context, id, assignmentID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.AssignmentID = assignmentID
	f.items[id] = r
	return nil
}

func (f *fakeResponseRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// fakeTxnRunner serializes transactions and rolls both fakes back when fn
// fails, mimicking a store-level multi-document transaction.
type fakeTxnRunner struct {
	mu          sync.Mutex
	assignments *fakeAssignmentRepo
	responses   *fakeResponseRepo
}

func newFakeTxnRunner(assignments *fakeAssignmentRepo, responses *fakeResponseRepo) *fakeTxnRunner {
	return &fakeTxnRunner{assignments: assignments, responses: responses}
}

func (f *fakeTxnRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	aSnap := f.assignments.snapshot()
	rSnap := f.responses.snapshot()
	if err := fn(ctx); err != nil {
		f.assignments.restore(aSnap)
		f.responses.restore(rSnap)
		return err
	}
	return nil
}

// recordingDispatcher captures dispatched completions; Dispatch runs on the
// submission goroutine, so tests wait on the channel.
type recordingDispatcher struct {
	mu   sync.Mutex
	subs []sideeffect.CompletedSubmission
	ch   chan sideeffect.CompletedSubmission
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{ch: make(chan sideeffect.CompletedSubmission, 32)}
}

func (d *recordingDispatcher) Dispatch(sub sideeffect.CompletedSubmission) {
	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()
	d.ch <- sub
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}
