package database

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

type MongodbDB struct {
	DB     *mongo.Database
	Client *mongo.Client
	useTxn bool
}

// WithTransaction runs fn inside a Mongo session transaction. On standalone
// deployments (no replica set) transactions are unavailable, so fn runs
// directly; every multi-document write routed through here must stay correct
// under that fallback (the occupancy conflict guard is an index, not the
// transaction).
func (m *MongodbDB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.useTxn {
		return fn(ctx)
	}

	session, err := m.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
