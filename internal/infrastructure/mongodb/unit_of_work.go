package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opsdash/platform/pkg/mongodb"
)

// UnitOfWork runs multi-document sequences inside a MongoDB transaction.
// The session context it hands to fn satisfies context.Context, so repository
// calls inside fn join the transaction transparently.
type UnitOfWork struct {
	client *mongodb.Client
}

// NewUnitOfWork creates a UnitOfWork over the shared client
func NewUnitOfWork(client *mongodb.Client) *UnitOfWork {
	return &UnitOfWork{client: client}
}

// WithinTransaction runs fn inside a transaction, committing on nil and
// aborting on error
func (u *UnitOfWork) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return u.client.WithTransaction(ctx, func(sc mongo.SessionContext) error {
		return fn(sc)
	})
}
