package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"talkmaster/internal/domain"
)

// Postgres error codes translated into domain errors.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeInvalidTextRepr      = "22P02"
)

// Constraint names from schema.sql.
const (
	constraintPlanningTalk = "plannings_talk_key"
	constraintPlanningSlot = "plannings_room_slot_key"
	constraintUserEmail    = "users_email_key"
)

//go:embed schema.sql
var schema string

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens a Postgres connection pool and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate applies schema.sql. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type transactor struct {
	DB *sql.DB
}

// NewTransactor returns a domain.Transactor running each unit of work in a serializable transaction.
func NewTransactor(db *sql.DB) domain.Transactor {
	return &transactor{DB: db}
}

// NewStores returns repositories bound to q (a *sql.DB or *sql.Tx).
func NewStores(q querier) domain.Stores {
	return domain.Stores{
		Talks:     &talkRepository{DB: q},
		Rooms:     &roomRepository{DB: q},
		Plannings: &planningRepository{DB: q},
		Users:     &userRepository{DB: q},
	}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s domain.Stores) error) error {
	tx, err := t.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, NewStores(tx)); err != nil {
		_ = tx.Rollback()
		return translateTxError(err)
	}
	if err := tx.Commit(); err != nil {
		return translateTxError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// translateTxError reports a serialization failure as a conflict: a concurrent
// transaction changed the rows this one read.
func translateTxError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeSerializationFailure {
		return fmt.Errorf("%w: the slot was modified concurrently, please retry", domain.ErrConflict)
	}
	return err
}

func isUniqueViolation(err error) (constraint string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// isNoRows reports whether a single-row lookup found nothing. A malformed UUID
// key cannot match any row, so it counts as a miss.
func isNoRows(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeInvalidTextRepr
}
