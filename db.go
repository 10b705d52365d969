package csbench

import (
	"database/sql"
	"errors"

	"github.com/tu-csb/csbench/binding"
)

const (
	// MaxRetryCount bounds the conflict retries of one write operation;
	// one initial attempt plus up to MaxRetryCount retries.
	MaxRetryCount = 3
	// BatchSize is the number of rows per flushed insert batch.
	BatchSize = 100
)

var (
	// ErrRetriesExhausted reports a write abandoned after the bounded
	// conflict-retry budget was spent. Callers can tell this outcome from
	// an immediately fatal error with errors.Is.
	ErrRetriesExhausted = errors.New("serialization conflict retries exhausted")

	// ErrEmptyCache reports a sampling request against an entity type with
	// no cached rows. Phase ordering should make this impossible; when it
	// occurs the operation is abandoned for that iteration.
	ErrEmptyCache = errors.New("no cached entities of the requested type")
)

// Rows is the iterator the executor reads result sets through.
// *sql.Rows satisfies it.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

// Tx is the slice of *sql.Tx the batched write path uses.
type Tx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Commit() error
	Rollback() error
}

// Conn is the worker-exclusive database connection seam. The engine treats
// the database purely as something that can execute statements and fail
// with a distinguished retryable error class; tests substitute their own
// implementation.
type Conn interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (Rows, error)
	Begin() (Tx, error)
	Close() error
}

type sqlConn struct {
	db *sql.DB
}

// NewSQLConn adapts a *sql.DB to the Conn seam.
func NewSQLConn(db *sql.DB) Conn {
	return &sqlConn{
		db: db,
	}
}

func (self *sqlConn) Exec(query string, args ...interface{}) (sql.Result, error) {
	return self.db.Exec(query, args...)
}

func (self *sqlConn) Query(query string, args ...interface{}) (Rows, error) {
	return self.db.Query(query, args...)
}

func (self *sqlConn) Begin() (Tx, error) {
	tx, err := self.db.Begin()
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (self *sqlConn) Close() error {
	return self.db.Close()
}

// OpenWorkerConn opens the exclusive connection of one worker against the
// given server address. The pool is pinned to a single connection so the
// worker really owns one database session.
func OpenWorkerConn(config *BenchmarkConfig, address string) (Conn, binding.Dialect, error) {
	dialect, err := binding.NewDialect(config.Driver)
	if err != nil {
		return nil, nil, err
	}
	if config.Driver == "basic" {
		return NewBasicConn(0), dialect, nil
	}
	db, err := sql.Open(dialect.DriverName(),
		dialect.DSN(address, config.DatabasePort, config.DatabaseName, config.DatabaseUser))
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return NewSQLConn(db), dialect, nil
}
