package csbench

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/tu-csb/csbench/binding"
	"github.com/tu-csb/csbench/model"
)

// DAO executes the benchmark's statements over one worker-exclusive
// connection. Writes run under a bounded conflict-retry protocol; every
// statement that reaches the database leaves a telemetry record stamped
// immediately before and after execution.
type DAO struct {
	conn     Conn
	dialect  binding.Dialect
	queryLog *QueryLog
	jitter   *rand.Rand
	sleep    func(d time.Duration)
}

func NewDAO(conn Conn, dialect binding.Dialect, queryLog *QueryLog) *DAO {
	return &DAO{
		conn:     conn,
		dialect:  dialect,
		queryLog: queryLog,
		jitter:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    time.Sleep,
	}
}

func nowTimestamp() string {
	return time.Now().Format(TimestampLayout)
}

// backoff sleeps for 2^retryCount * 100ms plus up to 100ms of jitter.
func (self *DAO) backoff(retryCount int) {
	millis := (1<<uint(retryCount))*100 + self.jitter.Intn(100)
	Infof("hit transaction retry error, sleeping %d milliseconds", millis)
	self.sleep(time.Duration(millis) * time.Millisecond)
}

// withRetry runs one logical write operation, retrying serialization
// conflicts up to MaxRetryCount times with exponential backoff. A conflict
// that survives the budget surfaces as ErrRetriesExhausted; any other
// error class is fatal for the operation and returned immediately.
func (self *DAO) withRetry(fn func() error) error {
	retryCount := 0
	for {
		err := fn()
		if err == nil {
			return nil
		}
		if !self.dialect.IsRetryable(err) {
			return err
		}
		retryCount++
		if retryCount > MaxRetryCount {
			return fmt.Errorf("%w: %s", ErrRetriesExhausted, err)
		}
		Warnf("retryable conflict, retry counter %d/%d: %s", retryCount, MaxRetryCount, err)
		self.backoff(retryCount)
	}
}

func (self *DAO) placeholders(columns int, rows int) string {
	var buf bytes.Buffer
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for c := 0; c < columns; c++ {
			if c > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(self.dialect.Placeholder(n))
			n++
		}
		buf.WriteString(")")
	}
	return buf.String()
}

func (self *DAO) insertSQL(m model.TableModel, rows int) string {
	columns := m.InsertColumns()
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		m.TableName(), strings.Join(columns, ", "), self.placeholders(len(columns), rows))
}

func (self *DAO) selectSQL(m model.TableModel, condition string) string {
	stmt := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(m.InsertColumns(), ", "), m.TableName())
	if len(condition) > 0 {
		stmt += " " + condition
	}
	return stmt
}

// InsertOne writes a single entity inside an implicit transaction.
func (self *DAO) InsertOne(m model.TableModel) error {
	return self.withRetry(func() error {
		stmt := self.insertSQL(m, 1)
		before := nowTimestamp()
		if _, err := self.conn.Exec(stmt, m.InsertArgs()...); err != nil {
			return err
		}
		self.queryLog.Add(stmt, before, nowTimestamp())
		return nil
	})
}

// InsertBatch streams the entities into multi-row inserts of BatchSize,
// flushing whenever the batch fills or the input is exhausted, and commits
// once at the end. A conflict rolls the transaction back and retries the
// whole logical batch from its start. All entities must share one table.
func (self *DAO) InsertBatch(models []model.TableModel) error {
	if len(models) == 0 {
		return nil
	}
	return self.withRetry(func() error {
		tx, err := self.conn.Begin()
		if err != nil {
			return err
		}
		batch := make([]model.TableModel, 0, BatchSize)
		before := make([]string, 0, BatchSize)
		for i, m := range models {
			batch = append(batch, m)
			before = append(before, nowTimestamp())
			if len(batch) == BatchSize || i == len(models)-1 {
				if err = self.flushBatch(tx, batch, before); err != nil {
					tx.Rollback()
					return err
				}
				batch = batch[:0]
				before = before[:0]
			}
		}
		if err = tx.Commit(); err != nil {
			return err
		}
		return nil
	})
}

// flushBatch executes one multi-row insert for the buffered entities and
// stamps every buffered telemetry record with the shared post-flush time.
func (self *DAO) flushBatch(tx Tx, batch []model.TableModel, before []string) error {
	stmt := self.insertSQL(batch[0], len(batch))
	args := make([]interface{}, 0, len(batch)*len(batch[0].InsertColumns()))
	for _, m := range batch {
		args = append(args, m.InsertArgs()...)
	}
	if _, err := tx.Exec(stmt, args...); err != nil {
		return err
	}
	after := nowTimestamp()
	for _, ts := range before {
		self.queryLog.Add(stmt, ts, after)
	}
	Debugf("flushed batch of %d rows into %s", len(batch), batch[0].TableName())
	return nil
}

// queryModels runs one read statement and scans every row through a fresh
// entity from the factory. Reads are not expected to conflict under the
// target isolation model and skip the retry protocol, but they are still
// timestamped.
func (self *DAO) queryModels(stmt string, args []interface{}, factory func() model.TableModel) ([]model.TableModel, error) {
	before := nowTimestamp()
	rows, err := self.conn.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	self.queryLog.Add(stmt, before, nowTimestamp())
	defer rows.Close()
	result := make([]model.TableModel, 0)
	for rows.Next() {
		m := factory()
		if err = m.ScanFrom(rows); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// GetCustomer fetches one customer by id; nil without error when absent.
func (self *DAO) GetCustomer(id string) (*model.Customer, error) {
	c := &model.Customer{}
	keyColumn, _ := c.PrimaryKey()
	stmt := self.selectSQL(c, fmt.Sprintf("WHERE %s = %s", keyColumn, self.dialect.Placeholder(1)))
	result, err := self.queryModels(stmt, []interface{}{id}, func() model.TableModel {
		return &model.Customer{}
	})
	if err != nil || len(result) == 0 {
		return nil, err
	}
	return result[0].(*model.Customer), nil
}

// GetItem fetches one item by id; nil without error when absent.
func (self *DAO) GetItem(id string) (*model.Item, error) {
	i := &model.Item{}
	keyColumn, _ := i.PrimaryKey()
	stmt := self.selectSQL(i, fmt.Sprintf("WHERE %s = %s", keyColumn, self.dialect.Placeholder(1)))
	result, err := self.queryModels(stmt, []interface{}{id}, func() model.TableModel {
		return &model.Item{}
	})
	if err != nil || len(result) == 0 {
		return nil, err
	}
	return result[0].(*model.Item), nil
}

func (self *DAO) GetOrdersOfCustomer(customerID string) ([]*model.Order, error) {
	stmt := self.selectSQL(&model.Order{}, fmt.Sprintf("WHERE c_id = %s", self.dialect.Placeholder(1)))
	result, err := self.queryModels(stmt, []interface{}{customerID}, func() model.TableModel {
		return &model.Order{}
	})
	if err != nil {
		return nil, err
	}
	orders := make([]*model.Order, 0, len(result))
	for _, m := range result {
		orders = append(orders, m.(*model.Order))
	}
	return orders, nil
}

func (self *DAO) GetOrderLinesOfOrder(orderID string) ([]*model.OrderLine, error) {
	stmt := self.selectSQL(&model.OrderLine{}, fmt.Sprintf("WHERE o_id = %s", self.dialect.Placeholder(1)))
	result, err := self.queryModels(stmt, []interface{}{orderID}, func() model.TableModel {
		return &model.OrderLine{}
	})
	if err != nil {
		return nil, err
	}
	lines := make([]*model.OrderLine, 0, len(result))
	for _, m := range result {
		lines = append(lines, m.(*model.OrderLine))
	}
	return lines, nil
}

func (self *DAO) getItems(condition string, args []interface{}) ([]*model.Item, error) {
	stmt := self.selectSQL(&model.Item{}, condition)
	result, err := self.queryModels(stmt, args, func() model.TableModel {
		return &model.Item{}
	})
	if err != nil {
		return nil, err
	}
	items := make([]*model.Item, 0, len(result))
	for _, m := range result {
		items = append(items, m.(*model.Item))
	}
	return items, nil
}

func (self *DAO) GetItemsSortedByPrice(limit int) ([]*model.Item, error) {
	return self.getItems(fmt.Sprintf("ORDER BY i_cost LIMIT %d", limit), nil)
}

func (self *DAO) GetItemsSortedByName(limit int) ([]*model.Item, error) {
	return self.getItems(fmt.Sprintf("ORDER BY i_title LIMIT %d", limit), nil)
}

func (self *DAO) GetItemsWithTitleContaining(limit int, part string) ([]*model.Item, error) {
	condition := fmt.Sprintf("WHERE i_title LIKE %s LIMIT %d", self.dialect.Placeholder(1), limit)
	return self.getItems(condition, []interface{}{"%" + part + "%"})
}

// GetAllCustomersWithOpenOrders joins customers against their orders still
// in OPEN status.
func (self *DAO) GetAllCustomersWithOpenOrders() ([]*model.Customer, error) {
	c := &model.Customer{}
	columns := c.InsertColumns()
	qualified := make([]string, 0, len(columns))
	for _, column := range columns {
		qualified = append(qualified, "customer."+column)
	}
	stmt := fmt.Sprintf(
		"SELECT %s FROM customer INNER JOIN orders ON customer.c_id = orders.c_id AND orders.o_status = 'OPEN'",
		strings.Join(qualified, ", "))
	result, err := self.queryModels(stmt, nil, func() model.TableModel {
		return &model.Customer{}
	})
	if err != nil {
		return nil, err
	}
	customers := make([]*model.Customer, 0, len(result))
	for _, m := range result {
		customers = append(customers, m.(*model.Customer))
	}
	return customers, nil
}

func (self *DAO) GetAllCustomers() ([]*model.Customer, error) {
	result, err := self.queryModels(self.selectSQL(&model.Customer{}, ""), nil, func() model.TableModel {
		return &model.Customer{}
	})
	if err != nil {
		return nil, err
	}
	customers := make([]*model.Customer, 0, len(result))
	for _, m := range result {
		customers = append(customers, m.(*model.Customer))
	}
	return customers, nil
}

func (self *DAO) GetAllItems() ([]*model.Item, error) {
	return self.getItems("", nil)
}

func (self *DAO) GetAllOrders() ([]*model.Order, error) {
	result, err := self.queryModels(self.selectSQL(&model.Order{}, ""), nil, func() model.TableModel {
		return &model.Order{}
	})
	if err != nil {
		return nil, err
	}
	orders := make([]*model.Order, 0, len(result))
	for _, m := range result {
		orders = append(orders, m.(*model.Order))
	}
	return orders, nil
}

// UpdateItemPrice writes new price fields for one item, under the write
// retry protocol.
func (self *DAO) UpdateItemPrice(item *model.Item) error {
	return self.withRetry(func() error {
		stmt := fmt.Sprintf("UPDATE item SET i_srp = %s, i_cost = %s WHERE i_id = %s",
			self.dialect.Placeholder(1), self.dialect.Placeholder(2), self.dialect.Placeholder(3))
		before := nowTimestamp()
		if _, err := self.conn.Exec(stmt, item.SRP, item.Cost, item.ID); err != nil {
			return err
		}
		self.queryLog.Add(stmt, before, nowTimestamp())
		return nil
	})
}

// TruncateAll empties all four benchmark tables. Destructive, hence the
// warning.
func (self *DAO) TruncateAll() error {
	Warnf("all tables truncated!")
	stmt := "TRUNCATE TABLE customer CASCADE; TRUNCATE TABLE orders CASCADE; " +
		"TRUNCATE TABLE item CASCADE; TRUNCATE TABLE order_line CASCADE;"
	before := nowTimestamp()
	if _, err := self.conn.Exec(stmt); err != nil {
		return err
	}
	self.queryLog.Add(stmt, before, nowTimestamp())
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customer (
		c_id STRING PRIMARY KEY,
		c_business_name STRING,
		c_business_info STRING,
		c_passwd STRING,
		c_contact_fname STRING,
		c_contact_lname STRING,
		c_addr STRING,
		c_contact_phone STRING,
		c_contact_email STRING,
		c_payment_method STRING,
		c_credit_info STRING,
		c_discount FLOAT
	)`,
	`CREATE TABLE IF NOT EXISTS item (
		i_id STRING PRIMARY KEY,
		i_title STRING,
		i_pub_date TIMESTAMP,
		i_publisher STRING,
		i_subject STRING,
		i_desc STRING,
		i_srp FLOAT,
		i_cost FLOAT,
		i_isbn STRING,
		i_page INT
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		o_id STRING PRIMARY KEY,
		c_id STRING REFERENCES customer (c_id),
		o_date TIMESTAMP,
		o_sub_total FLOAT,
		o_tax FLOAT,
		o_total FLOAT,
		o_ship_type STRING,
		o_ship_date TIMESTAMP,
		o_ship_addr STRING,
		o_status STRING
	)`,
	`CREATE TABLE IF NOT EXISTS order_line (
		ol_id STRING PRIMARY KEY,
		o_id STRING REFERENCES orders (o_id),
		i_id STRING REFERENCES item (i_id),
		ol_qty INT,
		ol_discount FLOAT,
		ol_status STRING
	)`,
}

// CreateTables bootstraps the four benchmark tables if they do not exist.
func (self *DAO) CreateTables() error {
	for _, stmt := range schemaStatements {
		if _, err := self.conn.Exec(stmt); err != nil {
			return err
		}
	}
	Infof("schema checked, %d tables present", len(schemaStatements))
	return nil
}

func (self *DAO) Close() error {
	return self.conn.Close()
}
