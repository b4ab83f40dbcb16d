package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// TxRunner is the transaction boundary services depend on. The caller's
// context rides into every statement, so a cancelled request or an expired
// deadline aborts the transaction instead of waiting on a contended lock
// forever.
type TxRunner interface {
	Transaction(ctx context.Context, fc func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewTxRunner wraps the gorm pool. timeout caps how long any one
// transaction, including its lock waits, may run; zero disables the cap.
func NewTxRunner(db *gorm.DB, timeout time.Duration) TxRunner {
	return &gormTxRunner{db: db, timeout: timeout}
}

func (r *gormTxRunner) Transaction(ctx context.Context, fc func(tx *gorm.DB) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.db.WithContext(ctx).Transaction(fc)
}

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation, which the engine surfaces as a retryable conflict.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsLockContention reports whether err is a lock_timeout expiry (55P03) or
// a deadlock abort (40P01). Both mean the transaction lost a race and is
// safe to retry from scratch.
func IsLockContention(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "55P03" || pgErr.Code == "40P01")
}
