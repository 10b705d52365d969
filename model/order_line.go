package model

import (
	g "github.com/tu-csb/csbench/generator"
)

// OrderLine is one position of an order, referencing an existing item.
type OrderLine struct {
	ID       string
	OrderID  string
	ItemID   string
	Quantity int
	Discount float64
	Status   string
}

// NewRandomOrderLine builds a fully populated order line referencing
// orderID and itemID.
func NewRandomOrderLine(rs *g.RandomStream, orderID string, itemID string) *OrderLine {
	return &OrderLine{
		ID:       rs.UUID(),
		OrderID:  orderID,
		ItemID:   itemID,
		Quantity: rs.IntBetween(1, 100),
		Discount: rs.FloatBetween(0, 100),
		Status:   rs.StringWithLength(2, 16),
	}
}

func (self *OrderLine) TableName() string {
	return "order_line"
}

func (self *OrderLine) InsertColumns() []string {
	return []string{"ol_id", "o_id", "i_id", "ol_qty", "ol_discount", "ol_status"}
}

func (self *OrderLine) InsertArgs() []interface{} {
	return []interface{}{
		self.ID, self.OrderID, self.ItemID, self.Quantity, self.Discount, self.Status,
	}
}

func (self *OrderLine) PrimaryKey() (string, string) {
	return "ol_id", self.ID
}

func (self *OrderLine) ScanFrom(row RowScanner) error {
	return row.Scan(
		&self.ID, &self.OrderID, &self.ItemID, &self.Quantity, &self.Discount, &self.Status,
	)
}
