package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgx operations the repositories use. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository code runs
// against the pool or inside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRepos bundles transaction-bound repositories handed to InTx callbacks.
type TxRepos struct {
	Tickets  TicketRepository
	Events   TicketEventRepository
	Policies SlaPolicyRepository
	Windows  MaintenanceWindowRepository
}

// TxRunner executes a function against repositories bound to one database
// transaction. Every ticket mutation runs through it so a reader never
// observes a ticket whose status changed but whose breach flags are stale.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constructs a runner over the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// InTx begins a transaction, invokes fn with transaction-bound repositories,
// and commits; any error rolls the whole unit back.
func (t *TxRunner) InTx(ctx context.Context, fn func(repos TxRepos) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	repos := TxRepos{
		Tickets:  NewTicketRepository(tx),
		Events:   NewTicketEventRepository(tx),
		Policies: NewSlaPolicyRepository(tx),
		Windows:  NewMaintenanceWindowRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
