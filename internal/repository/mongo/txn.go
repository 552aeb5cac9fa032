package mongo

import (
	"context"

	"coachsync/wellness-app/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// mongoTxnRunner implements repository.TxnRunner on top of MongoDB sessions.
type mongoTxnRunner struct {
	client *mongo.Client
}

// NewMongoTxnRunner creates a transaction runner backed by the given client.
// Requires a replica set or sharded deployment; standalone servers do not
// support multi-document transactions.
func NewMongoTxnRunner(client *mongo.Client) repository.TxnRunner {
	return &mongoTxnRunner{client: client}
}

func (r *mongoTxnRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
