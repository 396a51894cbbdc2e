package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// GetTx retrieves transaction from context
func GetTx(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx, ok
}

// Ext returns the transaction bound to ctx, or the database.
// Repositories must query through it so that work inside WithTx sees
// the transaction.
func (d *Data) Ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := GetTx(ctx); ok {
		return tx
	}
	return d.DB
}

// WithTx wraps function within transaction. Nested calls join the outer
// transaction.
func (d *Data) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}

	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed {
		return errors.New("data layer is closed")
	}

	tx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("tx err: %w, rollback err: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// Get runs a single-row query, rebinding placeholders
func (d *Data) Get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, d.Ext(ctx), dest, d.Rebind(query), args...)
}

// Select runs a multi-row query, rebinding placeholders
func (d *Data) Select(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, d.Ext(ctx), dest, d.Rebind(query), args...)
}

// Exec runs a statement, rebinding placeholders
func (d *Data) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.Ext(ctx).ExecContext(ctx, d.Rebind(query), args...)
}

// SelectIn runs a query containing an IN (?) clause expanded with sqlx.In
func (d *Data) SelectIn(ctx context.Context, dest any, query string, args ...any) error {
	q, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return d.Select(ctx, dest, q, inArgs...)
}

// ExecIn runs a statement containing an IN (?) clause expanded with sqlx.In
func (d *Data) ExecIn(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	return d.Exec(ctx, q, inArgs...)
}

// IsNotFound reports whether err is sql.ErrNoRows
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
