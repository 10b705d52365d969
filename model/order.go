package model

import (
	"time"

	g "github.com/tu-csb/csbench/generator"
)

const (
	// order dates are drawn from 2020-01-01 onward
	orderDateMinMillis = 1577833200000
	orderDateMaxMillis = 1641141846417
	// shipping happens one to five days after the order
	shipDelayMinMillis = 172800000
	shipDelayMaxMillis = 432000000

	taxRate = 0.19
)

// Order is one placed order owned by an existing customer.
type Order struct {
	ID         string
	CustomerID string
	Date       time.Time
	SubTotal   float64
	Tax        float64
	Total      float64
	ShipType   string
	ShipDate   time.Time
	ShipAddr   string
	Status     string
}

// NewRandomOrder builds a fully populated order referencing customerID.
// Tax is 19% of the subtotal and the total is their sum.
func NewRandomOrder(rs *g.RandomStream, customerID string) *Order {
	subTotal := rs.FloatBetween(5, 12000)
	date := millisToTime(rs.Int63Between(orderDateMinMillis, orderDateMaxMillis))
	return &Order{
		ID:         rs.UUID(),
		CustomerID: customerID,
		Date:       date,
		SubTotal:   subTotal,
		Tax:        subTotal * taxRate,
		Total:      subTotal + subTotal*taxRate,
		ShipType:   rs.StringWithLength(3, 10),
		ShipDate:   date.Add(time.Duration(rs.Int63Between(shipDelayMinMillis, shipDelayMaxMillis)) * time.Millisecond),
		ShipAddr:   rs.StringWithLength(25, 100),
		Status:     rs.StringWithLength(2, 16),
	}
}

func (self *Order) TableName() string {
	return "orders"
}

func (self *Order) InsertColumns() []string {
	return []string{
		"o_id", "c_id", "o_date", "o_sub_total", "o_tax", "o_total",
		"o_ship_type", "o_ship_date", "o_ship_addr", "o_status",
	}
}

func (self *Order) InsertArgs() []interface{} {
	return []interface{}{
		self.ID, self.CustomerID, self.Date, self.SubTotal, self.Tax,
		self.Total, self.ShipType, self.ShipDate, self.ShipAddr, self.Status,
	}
}

func (self *Order) PrimaryKey() (string, string) {
	return "o_id", self.ID
}

func (self *Order) ScanFrom(row RowScanner) error {
	return row.Scan(
		&self.ID, &self.CustomerID, &self.Date, &self.SubTotal, &self.Tax,
		&self.Total, &self.ShipType, &self.ShipDate, &self.ShipAddr, &self.Status,
	)
}
