package binding

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// PostgresDialect targets CockroachDB and plain PostgreSQL over the
// Postgres wire protocol.
type PostgresDialect struct {
}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (self *PostgresDialect) DriverName() string {
	return "postgres"
}

func (self *PostgresDialect) DSN(host string, port int, database string, user string) string {
	return fmt.Sprintf("postgresql://%s@%s:%d/%s?sslmode=disable", user, host, port, database)
}

func (self *PostgresDialect) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// IsRetryable recognizes SQLSTATE 40001, the serialization failure code
// CockroachDB reports when concurrent transactions cannot be serialized.
func (self *PostgresDialect) IsRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgerrcode.SerializationFailure
	}
	return false
}
