// Package binding maps database flavors to connection strings and
// driver-specific error classification. Each dialect knows how to build a
// DSN for database/sql, which placeholder syntax its driver speaks, and
// which of its errors are transient serialization conflicts the executor
// may retry.
package binding

import (
	"fmt"
)

type Dialect interface {
	// DriverName is the database/sql driver name to open.
	DriverName() string

	// DSN builds the connection string for one server address.
	DSN(host string, port int, database string, user string) string

	// Placeholder returns the parameter marker for the n-th statement
	// argument, counting from 1.
	Placeholder(n int) string

	// IsRetryable reports whether err is a transient transaction conflict
	// eligible for the bounded retry protocol. Every other error class is
	// fatal for the operation that hit it.
	IsRetryable(err error) bool
}

type MakeDialectFunc func() Dialect

var Dialects = map[string]MakeDialectFunc{
	"postgres": func() Dialect {
		return NewPostgresDialect()
	},
	"cockroach": func() Dialect {
		return NewPostgresDialect()
	},
	"mysql": func() Dialect {
		return NewMysqlDialect()
	},
	"basic": func() Dialect {
		return NewBasicDialect()
	},
}

func NewDialect(name string) (Dialect, error) {
	f, ok := Dialects[name]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", name)
	}
	return f(), nil
}
