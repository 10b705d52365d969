package csbench

import (
	"github.com/tu-csb/csbench/generator"
	"github.com/tu-csb/csbench/model"
)

// StateCache remembers the entities one worker knows to exist in the
// database, so run-phase operations can target valid keys without asking
// the database first. Only successfully persisted entities are admitted.
// Each cache belongs to exactly one worker goroutine and is unlocked.
type StateCache struct {
	customerIDs []string
	customers   map[string]*model.Customer
	itemIDs     []string
	items       map[string]*model.Item
	orderIDs    []string
	orders      map[string]*model.Order
	orderLines  map[string][]*model.OrderLine
	lineCount   int64
}

func NewStateCache() *StateCache {
	return &StateCache{
		customerIDs: make([]string, 0),
		customers:   make(map[string]*model.Customer),
		itemIDs:     make([]string, 0),
		items:       make(map[string]*model.Item),
		orderIDs:    make([]string, 0),
		orders:      make(map[string]*model.Order),
		orderLines:  make(map[string][]*model.OrderLine),
	}
}

func (self *StateCache) AddCustomer(c *model.Customer) {
	if _, ok := self.customers[c.ID]; ok {
		return
	}
	self.customers[c.ID] = c
	self.customerIDs = append(self.customerIDs, c.ID)
}

func (self *StateCache) AddItem(i *model.Item) {
	if _, ok := self.items[i.ID]; ok {
		return
	}
	self.items[i.ID] = i
	self.itemIDs = append(self.itemIDs, i.ID)
}

func (self *StateCache) AddOrder(o *model.Order) {
	if _, ok := self.orders[o.ID]; ok {
		return
	}
	self.orders[o.ID] = o
	self.orderIDs = append(self.orderIDs, o.ID)
}

func (self *StateCache) AddOrderLine(line *model.OrderLine) {
	self.orderLines[line.OrderID] = append(self.orderLines[line.OrderID], line)
	self.lineCount++
}

func (self *StateCache) CustomerCount() int64 {
	return int64(len(self.customerIDs))
}

func (self *StateCache) ItemCount() int64 {
	return int64(len(self.itemIDs))
}

func (self *StateCache) OrderCount() int64 {
	return int64(len(self.orderIDs))
}

func (self *StateCache) OrderLineCount() int64 {
	return self.lineCount
}

func (self *StateCache) HasCustomer(id string) bool {
	_, ok := self.customers[id]
	return ok
}

func (self *StateCache) HasItem(id string) bool {
	_, ok := self.items[id]
	return ok
}

func (self *StateCache) HasOrder(id string) bool {
	_, ok := self.orders[id]
	return ok
}

func (self *StateCache) OrderLinesOf(orderID string) []*model.OrderLine {
	return self.orderLines[orderID]
}

// RandomCustomer samples one cached customer uniformly.
func (self *StateCache) RandomCustomer(rs *generator.RandomStream) (*model.Customer, error) {
	if len(self.customerIDs) == 0 {
		return nil, ErrEmptyCache
	}
	id := self.customerIDs[rs.IntBetween(0, len(self.customerIDs)-1)]
	return self.customers[id], nil
}

// RandomItem samples one cached item uniformly.
func (self *StateCache) RandomItem(rs *generator.RandomStream) (*model.Item, error) {
	if len(self.itemIDs) == 0 {
		return nil, ErrEmptyCache
	}
	id := self.itemIDs[rs.IntBetween(0, len(self.itemIDs)-1)]
	return self.items[id], nil
}

// RandomOrder samples one cached order uniformly.
func (self *StateCache) RandomOrder(rs *generator.RandomStream) (*model.Order, error) {
	if len(self.orderIDs) == 0 {
		return nil, ErrEmptyCache
	}
	id := self.orderIDs[rs.IntBetween(0, len(self.orderIDs)-1)]
	return self.orders[id], nil
}

// RandomItems samples n distinct cached items. When n meets or exceeds the
// cached population the whole population is returned in insertion order.
func (self *StateCache) RandomItems(rs *generator.RandomStream, n int) ([]*model.Item, error) {
	if len(self.itemIDs) == 0 {
		return nil, ErrEmptyCache
	}
	if n >= len(self.itemIDs) {
		result := make([]*model.Item, 0, len(self.itemIDs))
		for _, id := range self.itemIDs {
			result = append(result, self.items[id])
		}
		return result, nil
	}
	chosen := make(map[string]bool, n)
	result := make([]*model.Item, 0, n)
	for len(result) < n {
		id := self.itemIDs[rs.IntBetween(0, len(self.itemIDs)-1)]
		if chosen[id] {
			continue
		}
		chosen[id] = true
		result = append(result, self.items[id])
	}
	return result, nil
}

// SyncFrom replaces the cached entities with rows read back from the
// database, used to seed run-phase workers with the load phase's output.
func (self *StateCache) SyncFrom(customers []*model.Customer, items []*model.Item, orders []*model.Order) {
	self.customerIDs = self.customerIDs[:0]
	self.customers = make(map[string]*model.Customer, len(customers))
	self.itemIDs = self.itemIDs[:0]
	self.items = make(map[string]*model.Item, len(items))
	self.orderIDs = self.orderIDs[:0]
	self.orders = make(map[string]*model.Order, len(orders))
	self.orderLines = make(map[string][]*model.OrderLine)
	self.lineCount = 0
	for _, c := range customers {
		self.AddCustomer(c)
	}
	for _, i := range items {
		self.AddItem(i)
	}
	for _, o := range orders {
		self.AddOrder(o)
	}
}

// Clone copies the cache for another worker. Entities are shared, the
// index structures are not, so workers diverge independently afterwards.
func (self *StateCache) Clone() *StateCache {
	clone := &StateCache{
		customerIDs: append([]string(nil), self.customerIDs...),
		customers:   make(map[string]*model.Customer, len(self.customers)),
		itemIDs:     append([]string(nil), self.itemIDs...),
		items:       make(map[string]*model.Item, len(self.items)),
		orderIDs:    append([]string(nil), self.orderIDs...),
		orders:      make(map[string]*model.Order, len(self.orders)),
		orderLines:  make(map[string][]*model.OrderLine, len(self.orderLines)),
		lineCount:   self.lineCount,
	}
	for id, c := range self.customers {
		clone.customers[id] = c
	}
	for id, i := range self.items {
		clone.items[id] = i
	}
	for id, o := range self.orders {
		clone.orders[id] = o
	}
	for id, lines := range self.orderLines {
		clone.orderLines[id] = append([]*model.OrderLine(nil), lines...)
	}
	return clone
}
