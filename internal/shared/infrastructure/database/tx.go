package database

import (
	"context"
	"errors"
)

var errNoTransaction = errors.New("no transaction in context")

type txKey struct{}

// txScope is stored in the context of a unit of work. Only the outermost
// scope owns the transaction.
type txScope struct {
	tx    Transaction
	owner bool
}

func scopeFrom(ctx context.Context) (txScope, bool) {
	scope, ok := ctx.Value(txKey{}).(txScope)
	return scope, ok && scope.tx != nil
}

// InTransaction reports whether ctx carries an open unit of work.
func InTransaction(ctx context.Context) bool {
	_, ok := scopeFrom(ctx)
	return ok
}

// ExecutorFromContext returns the unit of work's transaction when there is
// one, so repositories join it transparently.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if scope, ok := scopeFrom(ctx); ok {
		return scope.tx
	}
	return conn
}

// UnitOfWork implements application.UnitOfWork on a Connection. Nested
// units join the outer transaction and leave commit to it.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a unit of work factory for conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if scope, ok := scopeFrom(ctx); ok {
		return context.WithValue(ctx, txKey{}, txScope{tx: scope.tx}), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txKey{}, txScope{tx: tx, owner: true}), nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	scope, ok := scopeFrom(ctx)
	if !ok {
		return errNoTransaction
	}
	if !scope.owner {
		return nil
	}
	return scope.tx.Commit(ctx)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	scope, ok := scopeFrom(ctx)
	if !ok {
		return errNoTransaction
	}
	if !scope.owner {
		return nil
	}
	return scope.tx.Rollback(ctx)
}

// RunInTx runs fn in the caller's transaction, or in a new one committed
// when fn succeeds.
func RunInTx(ctx context.Context, conn Connection, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}
	uow := NewUnitOfWork(conn)
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		return errors.Join(err, uow.Rollback(txCtx))
	}
	return uow.Commit(txCtx)
}
