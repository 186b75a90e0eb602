package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"licensepanel/logger"
)

// SQLExecutor is the part of a connection pool the SQL stores use.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	// InTx runs fn in one transaction. fn's error rolls it back.
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// poolExecutor는 *sql.DB의 쿼리 메서드를 그대로 노출한다.
type poolExecutor struct {
	*sql.DB
}

// NewSQLExecutor wraps a pool opened by database.Initialize.
func NewSQLExecutor(db *sql.DB) SQLExecutor {
	return poolExecutor{DB: db}
}

func (e poolExecutor) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := e.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			logger.Warn("Failed to roll back transaction: %v", rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
