package storage

import (
	"context"

	"tourney/internal/domain/events"
	"tourney/internal/domain/paymentsrepo"
	"tourney/internal/domain/registrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Payments struct {
	Transactions paymentsrepo.Store
	Logs         paymentsrepo.LogsStore
}

type Container struct {
	pool          *pgxpool.Pool
	Events        events.Store
	Registrations registrations.Store
	Payments      Payments
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:          db,
		Events:        events.NewRepository(db),
		Registrations: registrations.NewRepository(db),
		Payments: Payments{
			Transactions: paymentsrepo.NewRepository(db),
			Logs:         paymentsrepo.NewLogsRepository(db),
		},
	}
}

// NewContainerFromStores wires caller-supplied stores. There is no pool, so
// WithPaymentsTx runs its function directly, without a transaction.
func NewContainerFromStores(ev events.Store, reg registrations.Store, tx paymentsrepo.Store, logs paymentsrepo.LogsStore) *Container {
	return &Container{
		Events:        ev,
		Registrations: reg,
		Payments:      Payments{Transactions: tx, Logs: logs},
	}
}

// PaymentsTx is a tx-scoped set of repos for recording a payment attempt.
type PaymentsTx struct {
	Registrations registrations.Store
	Transactions  paymentsrepo.Store
	Logs          paymentsrepo.LogsStore
}

// WithPaymentsTx runs fn atomically: the transaction row, the registration
// link and the initiate log are committed together or not at all.
func (c *Container) WithPaymentsTx(ctx context.Context, fn func(s *PaymentsTx) error) error {
	if c.pool == nil {
		return fn(&PaymentsTx{
			Registrations: c.Registrations,
			Transactions:  c.Payments.Transactions,
			Logs:          c.Payments.Logs,
		})
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // no-op after commit
	}()

	s := &PaymentsTx{
		Registrations: registrations.NewRepository(tx),
		Transactions:  paymentsrepo.NewRepository(tx),
		Logs:          paymentsrepo.NewLogsRepository(tx),
	}

	if err := fn(s); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (c *Container) Ping(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	return c.pool.Ping(ctx)
}
