// Package library provides Store and Tx for database access.
package library

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// querier abstracts *sqlx.DB and *sqlx.Tx for shared query logic.
type querier interface {
	sqlx.Queryer
	sqlx.Execer
}

// Store provides access to catalog data.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new library store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Begin starts a transaction.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", mapSQLiteError(err))
	}
	return &Tx{tx: tx}, nil
}

// InTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (s *Store) InTx(fn func(*Tx) error) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapSQLiteError(err))
	}
	return nil
}

// Tx wraps a database transaction with the same methods as Store.
type Tx struct {
	tx *sqlx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
