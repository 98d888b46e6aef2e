package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Store bundles the document repositories bound to one connection handle,
// normally a single request-scoped transaction.
type Store struct {
	db DBTX

	Masters    MasterRepository
	Houses     HouseRepository
	Containers ContainerRepository
	Charges    ChargeRepository
	Directory  DirectoryRepository
	AuditLogs  AuditLogsRepository
}

// NewStore binds every repository to db.
func NewStore(db DBTX) *Store {
	return &Store{
		db:         db,
		Masters:    NewMasterRepo(db),
		Houses:     NewHouseRepo(db),
		Containers: NewContainerRepo(db),
		Charges:    NewChargeRepo(db),
		Directory:  NewDirectoryRepo(db),
		AuditLogs:  NewAuditLogsRepo(db),
	}
}

// Savepoint runs fn inside a nested transaction so that a failing statement
// can be rolled back without aborting the enclosing transaction. When the
// store is not bound to something that can open a savepoint, fn runs on the
// store directly.
func (s *Store) Savepoint(ctx context.Context, fn func(*Store) error) error {
	beginner, ok := s.db.(TxBeginner)
	if !ok {
		return fn(s)
	}

	sp, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("open savepoint: %w", err)
	}

	if err := fn(NewStore(sp)); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback savepoint: %w", rbErr))
		}
		return err
	}

	return sp.Commit(ctx)
}

// TxManager runs a unit of work inside one transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, store *Store) error) error
	// WithinReadTx runs fn in a read-only REPEATABLE READ transaction so
	// every statement sees the same snapshot.
	WithinReadTx(ctx context.Context, fn func(ctx context.Context, store *Store) error) error
}

// TxStarter is the part of *pgxpool.Pool the transaction manager needs.
type TxStarter interface {
	TxBeginner
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

var readSnapshot = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

type pgTxManager struct {
	db TxStarter
}

// NewTxManager creates a transaction manager over a pool (or anything that
// can begin a pgx transaction).
func NewTxManager(db TxStarter) TxManager {
	return &pgTxManager{db: db}
}

// WithinTx acquires the transaction once, hands a bound Store to fn and
// commits when fn succeeds. Every other exit path, including a panic inside
// fn or a cancelled context, rolls back before returning.
func (m *pgTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, store *Store) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	return run(ctx, tx, fn)
}

func (m *pgTxManager) WithinReadTx(ctx context.Context, fn func(ctx context.Context, store *Store) error) error {
	tx, err := m.db.BeginTx(ctx, readSnapshot)
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	return run(ctx, tx, fn)
}

func run(ctx context.Context, tx pgx.Tx, fn func(ctx context.Context, store *Store) error) (err error) {
	committed := false
	defer func() {
		if committed {
			return
		}
		// Rollback must still reach the server after the request deadline.
		rbErr := tx.Rollback(context.WithoutCancel(ctx))
		if p := recover(); p != nil {
			panic(p)
		}
		if rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rbErr))
		}
	}()

	if err = fn(ctx, NewStore(tx)); err != nil {
		return err
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	return nil
}
