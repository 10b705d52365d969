package binding

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlErrLockDeadlock    = 1213
	mysqlErrLockWaitTimeout = 1205
)

// MysqlDialect targets MySQL-protocol stores, so the same workload can be
// pointed at a second database family for comparison runs.
type MysqlDialect struct {
}

func NewMysqlDialect() *MysqlDialect {
	return &MysqlDialect{}
}

func (self *MysqlDialect) DriverName() string {
	return "mysql"
}

func (self *MysqlDialect) DSN(host string, port int, database string, user string) string {
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", user, host, port, database)
}

func (self *MysqlDialect) Placeholder(n int) string {
	return "?"
}

func (self *MysqlDialect) IsRetryable(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrLockDeadlock ||
			mysqlErr.Number == mysqlErrLockWaitTimeout
	}
	return false
}
