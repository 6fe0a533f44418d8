// Package txn runs multi-document writes inside a MongoDB transaction when
// the deployment supports one (replica set or sharded cluster), and falls
// back to running the same writes sequentially on a standalone server.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes fn atomically where possible. The ctx handed to fn must be
// used for every store call that should join the transaction.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Mongo is a Runner backed by a client session.
type Mongo struct {
	client *mongo.Client
	log    *zap.Logger
}

// New returns a Runner for client.
func New(client *mongo.Client, logger *zap.Logger) *Mongo {
	return &Mongo{client: client, log: logger}
}

// Run starts a session and executes fn in a transaction. If the server
// rejects transactions, fn is executed again without one.
func (m *Mongo) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.client == nil {
		return fn(ctx)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		m.log.Warn("transactions not supported; running writes without one", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Direct is a Runner that calls fn with no transaction.
type Direct struct{}

// Run calls fn.
func (Direct) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// IsNotSupported reports whether err means the server cannot run transactions.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, (legacy) IllegalOperation, OperationNotSupportedInTransaction
			return true
		}
	}

	// Only the server's own "not a replica set" wording and the driver's
	// "sessions not supported" wording count. A failure inside a running
	// transaction must not be retried without one.
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "transaction") && strings.Contains(s, "replica set"):
		return true
	case strings.Contains(s, "session") && strings.Contains(s, "not supported"):
		return true
	}
	return false
}
