package csbench

import (
	"time"

	"github.com/tu-csb/csbench/binding"
	"github.com/tu-csb/csbench/generator"
	"github.com/tu-csb/csbench/model"
)

const (
	// order size bounds in the load phase
	loadPhaseMinOrderLines = 1
	loadPhaseMaxOrderLines = 8
	// fraction of items treated as top sellers in the run phase
	topSellerFraction = 0.1

	startPollInterval = 100 * time.Millisecond
)

// Worker drives one goroutine's share of a phase over an exclusive
// database connection. It owns a deterministic random stream, a state
// cache of entities it knows to exist and the telemetry log of every
// statement it issued.
type Worker struct {
	id             int64
	config         *BenchmarkConfig
	random         *generator.RandomStream
	state          *StateCache
	dao            *DAO
	queryLog       *QueryLog
	measurements   *Measurements
	topSellerItems []*model.Item
}

func NewWorker(id int64, seed int64, config *BenchmarkConfig,
	conn Conn, dialect binding.Dialect, measurements *Measurements) *Worker {
	queryLog := NewQueryLog(id)
	return &Worker{
		id:           id,
		config:       config,
		random:       generator.NewRandomStream(seed),
		state:        NewStateCache(),
		dao:          NewDAO(conn, dialect, queryLog),
		queryLog:     queryLog,
		measurements: measurements,
	}
}

func (self *Worker) ID() int64 {
	return self.id
}

func (self *Worker) QueryLog() *QueryLog {
	return self.queryLog
}

func (self *Worker) State() *StateCache {
	return self.state
}

func (self *Worker) DAO() *DAO {
	return self.dao
}

// SyncState replaces the worker's cache with an independent copy of base,
// so run-phase workers start from the load phase's persisted population.
func (self *Worker) SyncState(base *StateCache) {
	self.state = base.Clone()
}

func (self *Worker) Close() error {
	return self.dao.Close()
}

// InsertCustomer persists one new random customer and admits it to the
// cache on success.
func (self *Worker) InsertCustomer() (*model.Customer, error) {
	c := model.NewRandomCustomer(self.random)
	if err := self.dao.InsertOne(c); err != nil {
		return nil, err
	}
	self.state.AddCustomer(c)
	return c, nil
}

// BulkInsertCustomers persists count new random customers through the
// batched write path.
func (self *Worker) BulkInsertCustomers(count int64) error {
	customers := make([]*model.Customer, 0, count)
	models := make([]model.TableModel, 0, count)
	for n := int64(0); n < count; n++ {
		c := model.NewRandomCustomer(self.random)
		customers = append(customers, c)
		models = append(models, c)
	}
	if err := self.dao.InsertBatch(models); err != nil {
		return err
	}
	for _, c := range customers {
		self.state.AddCustomer(c)
	}
	return nil
}

// BulkInsertItems persists count new random items through the batched
// write path.
func (self *Worker) BulkInsertItems(count int64) error {
	items := make([]*model.Item, 0, count)
	models := make([]model.TableModel, 0, count)
	for n := int64(0); n < count; n++ {
		i := model.NewRandomItem(self.random)
		items = append(items, i)
		models = append(models, i)
	}
	if err := self.dao.InsertBatch(models); err != nil {
		return err
	}
	for _, i := range items {
		self.state.AddItem(i)
	}
	return nil
}

func (self *Worker) newOrderWithLines(lineCount int) (*model.Order, []*model.OrderLine, error) {
	customer, err := self.state.RandomCustomer(self.random)
	if err != nil {
		return nil, nil, err
	}
	items, err := self.state.RandomItems(self.random, lineCount)
	if err != nil {
		return nil, nil, err
	}
	order := model.NewRandomOrder(self.random, customer.ID)
	lines := make([]*model.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, model.NewRandomOrderLine(self.random, order.ID, item.ID))
	}
	return order, lines, nil
}

// InsertOrderWithLines persists one new order plus lineCount lines against
// cached customers and items, order first so the lines' references hold.
func (self *Worker) InsertOrderWithLines(lineCount int) (*model.Order, error) {
	order, lines, err := self.newOrderWithLines(lineCount)
	if err != nil {
		return nil, err
	}
	if err = self.dao.InsertOne(order); err != nil {
		return nil, err
	}
	self.state.AddOrder(order)
	for _, line := range lines {
		if err = self.dao.InsertOne(line); err != nil {
			return nil, err
		}
		self.state.AddOrderLine(line)
	}
	return order, nil
}

// BulkInsertOrdersWithLines persists count orders, each with one to eight
// lines, through the batched write path. Orders flush before their lines.
func (self *Worker) BulkInsertOrdersWithLines(count int64) error {
	orders := make([]*model.Order, 0, count)
	orderModels := make([]model.TableModel, 0, count)
	lines := make([]*model.OrderLine, 0, count)
	lineModels := make([]model.TableModel, 0, count)
	for n := int64(0); n < count; n++ {
		order, orderLines, err := self.newOrderWithLines(
			self.random.IntBetween(loadPhaseMinOrderLines, loadPhaseMaxOrderLines))
		if err != nil {
			return err
		}
		orders = append(orders, order)
		orderModels = append(orderModels, order)
		for _, line := range orderLines {
			lines = append(lines, line)
			lineModels = append(lineModels, line)
		}
	}
	if err := self.dao.InsertBatch(orderModels); err != nil {
		return err
	}
	for _, order := range orders {
		self.state.AddOrder(order)
	}
	if err := self.dao.InsertBatch(lineModels); err != nil {
		return err
	}
	for _, line := range lines {
		self.state.AddOrderLine(line)
	}
	return nil
}

// UpdateItemPrice raises the price fields of one cached item and persists
// the change.
func (self *Worker) UpdateItemPrice() (*model.Item, error) {
	item, err := self.state.RandomItem(self.random)
	if err != nil {
		return nil, err
	}
	item.SRP += 10
	item.Cost += 10
	if err = self.dao.UpdateItemPrice(item); err != nil {
		return nil, err
	}
	return item, nil
}

// RunLoadPhase drives the worker's locally visible population up to the
// configured targets, customers first, then items, then orders with their
// lines. The loop re-checks the cache each pass so pre-seeded state counts
// toward the target.
func (self *Worker) RunLoadPhase() error {
	for {
		if remaining := self.config.CustomerInsertsLoadPhase - self.state.CustomerCount(); remaining > 0 {
			if err := self.BulkInsertCustomers(remaining); err != nil {
				return err
			}
			continue
		}
		if remaining := self.config.ItemInsertsLoadPhase - self.state.ItemCount(); remaining > 0 {
			if err := self.BulkInsertItems(remaining); err != nil {
				return err
			}
			continue
		}
		if remaining := self.config.OrderInsertsLoadPhase - self.state.OrderCount(); remaining > 0 {
			if err := self.BulkInsertOrdersWithLines(remaining); err != nil {
				return err
			}
			continue
		}
		break
	}
	Infof("load worker %d done: %d customers, %d items, %d orders, %d order lines",
		self.id, self.state.CustomerCount(), self.state.ItemCount(),
		self.state.OrderCount(), self.state.OrderLineCount())
	return nil
}

// buildChooser flattens the configured weight table into the scheduler.
// Unknown operation names are rejected; a total other than 100 only warps
// the distribution and is warned about.
func (self *Worker) buildChooser() *generator.OperationChooser {
	chooser := generator.NewOperationChooser()
	for _, w := range self.config.OperationWeights {
		if _, ok := Operations[w.Name]; !ok {
			Errorf("unknown operation %q in weight table, skipping", w.Name)
			continue
		}
		chooser.AddOperation(w.Name, w.Weight)
	}
	if total := chooser.Total(); total != 100 {
		Warnf("summed probability is %d and not 100!", total)
	}
	return chooser
}

// RunRunPhase executes randomly chosen operations from startTime until
// endTime. The worker spins on the shared start time so all workers begin
// together, then draws operations from the weighted chooser.
func (self *Worker) RunRunPhase(startTime time.Time, endTime time.Time) {
	topSellerCount := int(float64(self.state.ItemCount()) * topSellerFraction)
	if topSellerCount < 1 {
		topSellerCount = 1
	}
	items, err := self.state.RandomItems(self.random, topSellerCount)
	if err != nil {
		Errorf("run worker %d has no items to mark as top sellers: %s", self.id, err)
	}
	self.topSellerItems = items

	chooser := self.buildChooser()
	for time.Now().Before(startTime) {
		time.Sleep(startPollInterval)
	}
	Infof("run worker %d started", self.id)
	executed := int64(0)
	for time.Now().Before(endTime) {
		name := chooser.Next(self.random)
		op := Operations[name]
		opStart := time.Now()
		err := op(self)
		self.measurements.Measure(name, time.Since(opStart).Microseconds())
		self.measurements.ReportStatus(name, statusOf(err))
		if err != nil {
			Warnf("run worker %d operation %s: %s", self.id, name, err)
		}
		executed++
	}
	Infof("run worker %d finished after %d operations", self.id, executed)
}
