package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoTransaction = errors.New("no transaction in progress")

type txKey struct{}

// Tx is a gorm transaction carried in a context. Entity stores pick it up through FromContext
// so several writes from different stores commit together.
type Tx struct {
	id  int64
	tx  *gorm.DB
	log *zap.SugaredLogger
}

// Commit commits the transaction carried by ctx. Without one it is a no-op.
func Commit(ctx context.Context) (context.Context, error) {
	return finish(ctx, (*Tx).Commit)
}

// Rollback rolls back the transaction carried by ctx. Without one it is a no-op.
func Rollback(ctx context.Context) (context.Context, error) {
	return finish(ctx, (*Tx).Rollback)
}

func finish(ctx context.Context, fn func(*Tx) error) (context.Context, error) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	if !ok || tx == nil {
		return ctx, nil
	}
	return context.WithValue(ctx, txKey{}, (*Tx)(nil)), fn(tx)
}

// FromContext returns the open transaction in ctx, or nil.
func FromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*Tx); ok && tx != nil {
		return tx.tx
	}
	return nil
}

// WithTransaction runs fn inside a transaction started from s. fn's error rolls it back.
// Nested calls join the outer transaction and leave commit to it.
func WithTransaction(ctx context.Context, s Store, fn func(ctx context.Context) error) error {
	if FromContext(ctx) != nil {
		return fn(ctx)
	}

	txCtx, err := s.NewTransactionContext(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(txCtx); err != nil {
		if _, rbErr := Rollback(txCtx); rbErr != nil {
			zap.S().Named("store_tx").Warnw("rollback failed", "error", rbErr)
		}
		return err
	}

	_, err = Commit(txCtx)
	return err
}

func newTransactionContext(ctx context.Context, db *gorm.DB) (context.Context, error) {
	if FromContext(ctx) != nil {
		return ctx, nil
	}

	tx, err := newTransaction(db.Session(&gorm.Session{Context: ctx}))
	if err != nil {
		return ctx, err
	}
	return context.WithValue(ctx, txKey{}, tx), nil
}

func newTransaction(db *gorm.DB) (*Tx, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// txid_current only exists on postgres; sqlite leaves the id at zero.
	var txid struct{ ID int64 }
	if db.Dialector.Name() == "postgres" {
		tx.Raw("select txid_current() as id").Scan(&txid)
	}

	return &Tx{id: txid.ID, tx: tx, log: zap.S().Named("store_tx")}, nil
}

func (t *Tx) Commit() error {
	if t.tx == nil {
		return ErrNoTransaction
	}
	if err := t.tx.Commit().Error; err != nil {
		t.log.Errorw("commit failed", "tx_id", t.id, "error", err)
		return err
	}
	t.log.Debugw("transaction committed", "tx_id", t.id)
	t.tx = nil
	return nil
}

func (t *Tx) Rollback() error {
	if t.tx == nil {
		return ErrNoTransaction
	}
	if err := t.tx.Rollback().Error; err != nil {
		t.log.Errorw("rollback failed", "tx_id", t.id, "error", err)
		return err
	}
	t.log.Debugw("transaction rolled back", "tx_id", t.id)
	t.tx = nil
	return nil
}
