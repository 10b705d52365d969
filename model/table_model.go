// Package model holds the four TPC-W-like benchmark entities and their
// randomized factories. Entities carry just enough SQL metadata (table name,
// column list, argument order) for the executor to persist and reload rows
// without reflection.
package model

import (
	"time"
)

// RowScanner is the subset of *sql.Rows a model scans itself from.
type RowScanner interface {
	Scan(dest ...interface{}) error
}

// TableModel is implemented by every benchmark entity.
type TableModel interface {
	TableName() string
	// InsertColumns returns the table's columns in insert order.
	InsertColumns() []string
	// InsertArgs returns the entity's values in the same order.
	InsertArgs() []interface{}
	// PrimaryKey returns the key column name and this entity's value for it.
	PrimaryKey() (string, string)
	// ScanFrom fills the entity from one result row selected with
	// InsertColumns order.
	ScanFrom(row RowScanner) error
}

func millisToTime(millis int64) time.Time {
	return time.Unix(millis/1000, (millis%1000)*int64(time.Millisecond))
}
