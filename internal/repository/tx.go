package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner runs a unit of work inside a single database transaction.
// Implementations commit when the function returns nil and roll back otherwise.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

type PGTxRunner struct {
	pool               *pgxpool.Pool
	statementTimeoutMS int
}

// NewTxRunner wraps a pgx pool. statementTimeoutMS bounds how long any
// statement inside the transaction may wait (row locks included); zero
// keeps the server default.
func NewTxRunner(pool *pgxpool.Pool, statementTimeoutMS int) *PGTxRunner {
	return &PGTxRunner{pool: pool, statementTimeoutMS: statementTimeoutMS}
}

func (r *PGTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if r.statementTimeoutMS > 0 {
		// SET LOCAL only lives until commit or rollback.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", r.statementTimeoutMS)); err != nil {
			rollback(ctx, tx)
			return fmt.Errorf("set statement timeout: %w", err)
		}
	}

	if err := fn(ctx, tx); err != nil {
		rollback(ctx, tx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		rollback(ctx, tx)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// rollback never masks the error that triggered it; a failed rollback is
// only logged.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		log.Printf("rollback failed: %v", err)
	}
}

var _ TxRunner = (*PGTxRunner)(nil)
