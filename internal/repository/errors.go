// Package repository implements the booking stores on MySQL.  The ledger
// relies on InnoDB row locks and the seat_claims primary key; every
// multi-row change runs in one transaction.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the repositories react to.
const (
	errDupEntry   = 1062
	errLockWait   = 1205
	errDeadlock   = 1213
	maxTxAttempts = 3
)

func mysqlErrno(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// IsDuplicate reports a unique key violation.
func IsDuplicate(err error) bool {
	return mysqlErrno(err) == errDupEntry
}

// IsRetryable reports deadlocks and lock wait timeouts, which InnoDB
// resolves by rolling back one of the transactions.
func IsRetryable(err error) bool {
	n := mysqlErrno(err)
	return n == errDeadlock || n == errLockWait
}

// withTx runs fn in a transaction, committing on success.  Retryable
// lock failures restart fn from scratch up to maxTxAttempts times.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = runTx(ctx, db, fn)
		if err == nil || !IsRetryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(vals []string) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
