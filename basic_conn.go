package csbench

import (
	"database/sql"
	"time"
)

// BasicConn is a connection stand-in that accepts every statement and
// returns empty result sets, optionally after a simulated delay. It lets
// the full engine run dry, without a database, and backs the package tests.
type BasicConn struct {
	simulateDelay time.Duration
}

func NewBasicConn(simulateDelay time.Duration) *BasicConn {
	return &BasicConn{
		simulateDelay: simulateDelay,
	}
}

func (self *BasicConn) delay() {
	if self.simulateDelay > 0 {
		time.Sleep(self.simulateDelay)
	}
}

func (self *BasicConn) Exec(query string, args ...interface{}) (sql.Result, error) {
	self.delay()
	Verbosef("basic: %s (%d args)", query, len(args))
	return basicResult{}, nil
}

func (self *BasicConn) Query(query string, args ...interface{}) (Rows, error) {
	self.delay()
	Verbosef("basic: %s (%d args)", query, len(args))
	return &basicRows{}, nil
}

func (self *BasicConn) Begin() (Tx, error) {
	return &basicTx{conn: self}, nil
}

func (self *BasicConn) Close() error {
	return nil
}

type basicResult struct {
}

func (self basicResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (self basicResult) RowsAffected() (int64, error) {
	return 0, nil
}

type basicRows struct {
}

func (self *basicRows) Next() bool {
	return false
}

func (self *basicRows) Scan(dest ...interface{}) error {
	return nil
}

func (self *basicRows) Err() error {
	return nil
}

func (self *basicRows) Close() error {
	return nil
}

type basicTx struct {
	conn *BasicConn
}

func (self *basicTx) Exec(query string, args ...interface{}) (sql.Result, error) {
	return self.conn.Exec(query, args...)
}

func (self *basicTx) Commit() error {
	return nil
}

func (self *basicTx) Rollback() error {
	return nil
}
