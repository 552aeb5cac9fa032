package mongo

import (
	"context"
	"errors"
	"time"

	"coachsync/wellness-app/internal/domain"
	"coachsync/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const assignmentCollectionName = "assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new assignment. A duplicate (clientId, formId,
// recurringWeek) triple surfaces as repository.ErrDuplicateKey so callers can
// detect a lost materialization race.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	if assignment.ClientID == primitive.NilObjectID ||
		assignment.FormID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires clientId and formId")
	}
	if assignment.RecurringWeek < 1 {
		return primitive.NilObjectID, errors.New("recurringWeek must be >= 1")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.StatusPending
	}

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}
	return insertedID, nil
}

// GetByID retrieves an assignment by its primary key.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByExternalID retrieves an assignment by its secondary cross-reference id.
func (r *mongoAssignmentRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Assignment, error) {
	return r.findOne(ctx, bson.M{"externalId": externalID})
}

// GetByWeek retrieves the materialized assignment for one recurring slot.
func (r *mongoAssignmentRepository) GetByWeek(ctx context.Context, clientID, formID primitive.ObjectID, week int) (*domain.Assignment, error) {
	return r.findOne(ctx, bson.M{
		"clientId":      clientID,
		"formId":        formID,
		"recurringWeek": week,
	})
}

func (r *mongoAssignmentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Assignment, error) {
	var assignment domain.Assignment
	err := r.collection.FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByClientID retrieves all assignments for a specific client, newest first.
func (r *mongoAssignmentRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	filter := bson.M{"clientId": clientID}
	findOptions := options.Find().SetSort(bson.D{{Key: "dueDate", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// CompareAndComplete performs the single conditional write that moves an
// assignment from expected status to completed. The status filter makes the
// check-then-act race safe: of two concurrent submissions only one matches.
func (r *mongoAssignmentRepository) CompareAndComplete(ctx context.Context, id primitive.ObjectID, expected domain.AssignmentStatus, responseID primitive.ObjectID, score int) error {
	filter := bson.M{"_id": id, "status": expected}
	update := bson.M{
		"$set": bson.M{
			"status":     domain.StatusCompleted,
			"responseId": responseID,
			"score":      score,
			"updatedAt":  time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Distinguish "gone" from "already transitioned".
		if _, err := r.GetByID(ctx, id); errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrStatusConflict
	}
	return nil
}

// EnsureAssignmentIndexes creates necessary indexes for the assignments collection.
// The unique compound index is what guarantees at most one assignment per
// (clientId, formId, recurringWeek) slot under concurrent materialization.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "clientId", Value: 1},
				{Key: "formId", Value: 1},
				{Key: "recurringWeek", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "externalId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "dueDate", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
