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

const responseCollectionName = "responses"

// mongoResponseRepository implements repository.ResponseRepository
type mongoResponseRepository struct {
	collection *mongo.Collection
}

// NewMongoResponseRepository creates a new Response repository backed by MongoDB.
func NewMongoResponseRepository(db *mongo.Database) repository.ResponseRepository {
	return &mongoResponseRepository{
		collection: db.Collection(responseCollectionName),
	}
}

// Create inserts a new response record.
func (r *mongoResponseRepository) Create(ctx context.Context, response *domain.Response) (primitive.ObjectID, error) {
	if response.ClientID == primitive.NilObjectID || response.FormID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("response requires clientId and formId")
	}

	response.ID = primitive.NewObjectID()
	if response.SubmittedAt.IsZero() {
		response.SubmittedAt = time.Now().UTC()
	}
	if response.Status == "" {
		response.Status = "completed"
	}

	result, err := r.collection.InsertOne(ctx, response)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted response ID")
	}
	return insertedID, nil
}

// GetByID retrieves a response by its ID.
func (r *mongoResponseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Response, error) {
	var response domain.Response
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&response)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &response, nil
}

// SetAssignmentID back-fills the owning assignment id. This is the only
// permitted mutation of a response.
func (r *mongoResponseRepository) SetAssignmentID(ctx context.Context, id, assignmentID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"assignmentId": assignmentID}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureResponseIndexes creates necessary indexes for the responses collection.
func EnsureResponseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "assignmentId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "submittedAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
