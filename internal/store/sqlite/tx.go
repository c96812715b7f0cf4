package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kailas-cloud/marketindex/internal/domain/change"
)

// Tx is a write transaction. It is only valid inside the InTx callback.
type Tx struct {
	tx      *sql.Tx
	store   *Store
	pending []change.Event
}

// Emit queues e for the post-commit hooks.
func (tx *Tx) Emit(e change.Event) {
	tx.pending = append(tx.pending, e)
}

// InTx runs fn in a transaction. fn's error (or panic) rolls back and discards
// emitted events; otherwise the transaction commits and the hooks run before InTx returns.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	tx := &Tx{tx: sqlTx, store: s}

	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true

	s.afterCommit(ctx, tx.pending)
	return nil
}
