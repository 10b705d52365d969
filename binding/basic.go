package binding

import (
	"fmt"
)

// BasicDialect backs the stand-in connection that accepts every statement
// without a database behind it. Nothing it sees is ever retryable.
type BasicDialect struct {
}

func NewBasicDialect() *BasicDialect {
	return &BasicDialect{}
}

func (self *BasicDialect) DriverName() string {
	return "basic"
}

func (self *BasicDialect) DSN(host string, port int, database string, user string) string {
	return ""
}

func (self *BasicDialect) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (self *BasicDialect) IsRetryable(err error) bool {
	return false
}
