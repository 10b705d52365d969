package csbench

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hhkbp2/testify/require"
	"github.com/lib/pq"
	"github.com/tu-csb/csbench/binding"
	"github.com/tu-csb/csbench/generator"
	"github.com/tu-csb/csbench/model"
)

type fakeExec struct {
	query string
	args  []interface{}
}

// fakeConn scripts errors for successive Exec calls and records every
// statement that reaches it, both directly and through transactions.
type fakeConn struct {
	execs      []fakeExec
	execErrors []error
	execCalls  int
	begins     int
	commits    int
	rollbacks  int
}

func (self *fakeConn) nextExecError() error {
	if self.execCalls <= len(self.execErrors) {
		return self.execErrors[self.execCalls-1]
	}
	return nil
}

func (self *fakeConn) Exec(query string, args ...interface{}) (sql.Result, error) {
	self.execCalls++
	if err := self.nextExecError(); err != nil {
		return nil, err
	}
	self.execs = append(self.execs, fakeExec{query: query, args: args})
	return basicResult{}, nil
}

func (self *fakeConn) Query(query string, args ...interface{}) (Rows, error) {
	return &basicRows{}, nil
}

func (self *fakeConn) Begin() (Tx, error) {
	self.begins++
	return &fakeTx{conn: self}, nil
}

func (self *fakeConn) Close() error {
	return nil
}

type fakeTx struct {
	conn *fakeConn
}

func (self *fakeTx) Exec(query string, args ...interface{}) (sql.Result, error) {
	return self.conn.Exec(query, args...)
}

func (self *fakeTx) Commit() error {
	self.conn.commits++
	return nil
}

func (self *fakeTx) Rollback() error {
	self.conn.rollbacks++
	return nil
}

func retryableError() error {
	return &pq.Error{Code: "40001", Message: "restart transaction"}
}

func newTestDAO(conn Conn) (*DAO, *QueryLog, *[]time.Duration) {
	queryLog := NewQueryLog(7)
	dialect, err := binding.NewDialect("postgres")
	if err != nil {
		panic(err)
	}
	dao := NewDAO(conn, dialect, queryLog)
	sleeps := &[]time.Duration{}
	dao.sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return dao, queryLog, sleeps
}

func TestDAOInsertOneSuccess(t *testing.T) {
	conn := &fakeConn{}
	dao, queryLog, sleeps := newTestDAO(conn)
	c := model.NewRandomCustomer(generator.NewRandomStream(42))
	err := dao.InsertOne(c)
	require.Nil(t, err)
	require.Equal(t, 1, conn.execCalls)
	require.Equal(t, 0, len(*sleeps))
	require.Equal(t, 1, queryLog.Size())
	record := queryLog.Queries()[0]
	require.Equal(t, int64(7), record.WorkloadContextID)
	require.Equal(t, int64(0), record.ExecutingOrderID)
	require.True(t, len(record.TimestampBeforeCommit) == len(TimestampLayout))
}

func TestDAOInsertOneRetriesExhausted(t *testing.T) {
	conn := &fakeConn{
		execErrors: []error{
			retryableError(), retryableError(), retryableError(), retryableError(),
			retryableError(), retryableError(),
		},
	}
	dao, queryLog, sleeps := newTestDAO(conn)
	c := model.NewRandomCustomer(generator.NewRandomStream(42))
	err := dao.InsertOne(c)
	require.NotNil(t, err)
	require.True(t, errors.Is(err, ErrRetriesExhausted))
	// one initial attempt plus MaxRetryCount retries
	require.Equal(t, 1+MaxRetryCount, conn.execCalls)
	require.Equal(t, MaxRetryCount, len(*sleeps))
	require.True(t, (*sleeps)[0] >= 200*time.Millisecond)
	require.True(t, (*sleeps)[0] < 300*time.Millisecond)
	require.True(t, (*sleeps)[1] >= 400*time.Millisecond)
	require.True(t, (*sleeps)[2] >= 800*time.Millisecond)
	require.Equal(t, 0, queryLog.Size())
}

func TestDAOInsertOneRecoversAfterConflict(t *testing.T) {
	conn := &fakeConn{
		execErrors: []error{retryableError(), nil},
	}
	dao, queryLog, sleeps := newTestDAO(conn)
	c := model.NewRandomCustomer(generator.NewRandomStream(42))
	err := dao.InsertOne(c)
	require.Nil(t, err)
	require.Equal(t, 2, conn.execCalls)
	require.Equal(t, 1, len(*sleeps))
	require.Equal(t, 1, queryLog.Size())
}

func TestDAOInsertOneFatalError(t *testing.T) {
	fatal := fmt.Errorf("connection refused")
	conn := &fakeConn{
		execErrors: []error{fatal},
	}
	dao, _, sleeps := newTestDAO(conn)
	c := model.NewRandomCustomer(generator.NewRandomStream(42))
	err := dao.InsertOne(c)
	require.NotNil(t, err)
	require.False(t, errors.Is(err, ErrRetriesExhausted))
	require.Equal(t, 1, conn.execCalls)
	require.Equal(t, 0, len(*sleeps))
}

func TestDAOWrappedRetryableError(t *testing.T) {
	conn := &fakeConn{
		execErrors: []error{
			fmt.Errorf("exec failed: %w", retryableError()),
			nil,
		},
	}
	dao, _, _ := newTestDAO(conn)
	c := model.NewRandomCustomer(generator.NewRandomStream(42))
	err := dao.InsertOne(c)
	require.Nil(t, err)
	require.Equal(t, 2, conn.execCalls)
}

func TestDAOInsertBatchFlushing(t *testing.T) {
	conn := &fakeConn{}
	dao, queryLog, _ := newTestDAO(conn)
	rs := generator.NewRandomStream(42)
	models := make([]model.TableModel, 0, 250)
	for n := 0; n < 250; n++ {
		models = append(models, model.NewRandomCustomer(rs))
	}
	err := dao.InsertBatch(models)
	require.Nil(t, err)
	require.Equal(t, 1, conn.begins)
	require.Equal(t, 1, conn.commits)
	require.Equal(t, 0, conn.rollbacks)
	// 250 rows flush as 100 + 100 + 50
	require.Equal(t, 3, len(conn.execs))
	columns := len(models[0].InsertColumns())
	require.Equal(t, BatchSize*columns, len(conn.execs[0].args))
	require.Equal(t, BatchSize*columns, len(conn.execs[1].args))
	require.Equal(t, 50*columns, len(conn.execs[2].args))
	// one telemetry record per row, numbered in execution order
	require.Equal(t, 250, queryLog.Size())
	for i, record := range queryLog.Queries() {
		require.Equal(t, int64(i), record.ExecutingOrderID)
	}
	// the rows of one flush share their after timestamp
	records := queryLog.Queries()
	require.Equal(t, records[0].TimestampAfterCommit, records[99].TimestampAfterCommit)
}

func TestDAOInsertBatchConflictRetriesWholeBatch(t *testing.T) {
	conn := &fakeConn{
		execErrors: []error{retryableError()},
	}
	dao, queryLog, sleeps := newTestDAO(conn)
	rs := generator.NewRandomStream(42)
	models := make([]model.TableModel, 0, 10)
	for n := 0; n < 10; n++ {
		models = append(models, model.NewRandomCustomer(rs))
	}
	err := dao.InsertBatch(models)
	require.Nil(t, err)
	require.Equal(t, 2, conn.begins)
	require.Equal(t, 1, conn.commits)
	require.Equal(t, 1, conn.rollbacks)
	require.Equal(t, 1, len(*sleeps))
	// the failed attempt leaves no telemetry behind
	require.Equal(t, 10, queryLog.Size())
}

func TestDAOInsertBatchEmpty(t *testing.T) {
	conn := &fakeConn{}
	dao, _, _ := newTestDAO(conn)
	err := dao.InsertBatch(nil)
	require.Nil(t, err)
	require.Equal(t, 0, conn.begins)
}

func TestDAOInsertSQLPlaceholders(t *testing.T) {
	conn := &fakeConn{}
	dao, _, _ := newTestDAO(conn)
	line := &model.OrderLine{}
	stmt := dao.insertSQL(line, 2)
	require.Equal(t,
		"INSERT INTO order_line (ol_id, o_id, i_id, ol_qty, ol_discount, ol_status) "+
			"VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)",
		stmt)
}

func TestDAOUpdateItemPrice(t *testing.T) {
	conn := &fakeConn{}
	dao, queryLog, _ := newTestDAO(conn)
	item := model.NewRandomItem(generator.NewRandomStream(42))
	item.SRP += 10
	item.Cost += 10
	err := dao.UpdateItemPrice(item)
	require.Nil(t, err)
	require.Equal(t, 1, len(conn.execs))
	require.Equal(t, "UPDATE item SET i_srp = $1, i_cost = $2 WHERE i_id = $3",
		conn.execs[0].query)
	require.Equal(t, 3, len(conn.execs[0].args))
	require.Equal(t, 1, queryLog.Size())
}

func TestDAOTruncateAll(t *testing.T) {
	conn := &fakeConn{}
	dao, queryLog, _ := newTestDAO(conn)
	err := dao.TruncateAll()
	require.Nil(t, err)
	require.Equal(t, 1, len(conn.execs))
	require.True(t, strings.Contains(conn.execs[0].query, "TRUNCATE TABLE customer"))
	require.True(t, strings.Contains(conn.execs[0].query, "TRUNCATE TABLE order_line"))
	require.Equal(t, 1, queryLog.Size())
}

func TestDAOGetItemAbsent(t *testing.T) {
	dao, queryLog, _ := newTestDAO(NewBasicConn(0))
	item, err := dao.GetItem("no-such-id")
	require.Nil(t, err)
	require.Nil(t, item)
	require.Equal(t, 1, queryLog.Size())
}
