package services

import (
	"context"

	"real-estate-market/internal/blockchain"
	"real-estate-market/internal/events"
	"real-estate-market/internal/repository"

	"gorm.io/gorm"
)

// Executor runs calls one at a time, each inside a database transaction.
// A call either commits all of its storage writes, ledger movements and
// events, or none of them.
type Executor struct {
	db     *gorm.DB
	repo   *repository.Repository
	ledger *blockchain.Ledger
	events *events.Recorder
	calls  chan struct{}
}

func NewExecutor(db *gorm.DB, repo *repository.Repository, ledger *blockchain.Ledger, recorder *events.Recorder) *Executor {
	return &Executor{
		db:     db,
		repo:   repo,
		ledger: ledger,
		events: recorder,
		calls:  make(chan struct{}, 1),
	}
}

// scope is the view of storage, ledger and outbox inside one call
type scope struct {
	tx     *gorm.DB
	repo   *repository.Repository
	ledger *blockchain.Ledger
	events *events.Recorder
	block  uint64
}

func (e *Executor) bind(tx *gorm.DB, block uint64) *scope {
	return &scope{
		tx:     tx,
		repo:   e.repo.WithTx(tx),
		ledger: e.ledger.WithTx(tx),
		events: e.events.WithTx(tx),
		block:  block,
	}
}

// Run executes fn in a transaction at the current block
func (e *Executor) Run(ctx context.Context, fn func(sc *scope) error) error {
	select {
	case e.calls <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.calls }()

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sc := e.bind(tx, 0)
		block, err := sc.ledger.Chain.BlockNumber(ctx)
		if err != nil {
			return err
		}
		sc.block = block
		return fn(sc)
	})
}

// nested runs fn in a savepoint of the current call
func (sc *scope) nested(ctx context.Context, fn func(inner *scope) error) error {
	return sc.tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := &scope{
			tx:     tx,
			repo:   sc.repo.WithTx(tx),
			ledger: sc.ledger.WithTx(tx),
			events: sc.events.WithTx(tx),
			block:  sc.block,
		}
		return fn(inner)
	})
}

func (sc *scope) emit(ctx context.Context, module, name string, fields events.Fields) error {
	return sc.events.Emit(ctx, sc.block, module, name, fields)
}

// Repository gives read access outside of calls
func (e *Executor) Repository() *repository.Repository {
	return e.repo
}

// Ledger gives read access outside of calls
func (e *Executor) Ledger() *blockchain.Ledger {
	return e.ledger
}
