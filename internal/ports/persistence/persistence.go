package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Persistence интерфейс для работы с базой данных
type Persistence interface {
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) error
	ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error)
	NamedExec(ctx context.Context, query string, arg interface{}) error
	QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// TxPersistence база данных с поддержкой транзакций
type TxPersistence interface {
	Persistence
	// WithTransaction выполняет fn в транзакции с автоматическим commit/rollback
	WithTransaction(ctx context.Context, fn func(context.Context, Transaction) error) error
}

// Transaction интерфейс операций внутри транзакции
type Transaction interface {
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) error
	ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error)
	NamedExec(ctx context.Context, query string, arg interface{}) error
	Commit() error
	Rollback() error
}
