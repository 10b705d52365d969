package model

import (
	"fmt"

	g "github.com/tu-csb/csbench/generator"
)

// Customer is one registered business buyer. Immutable after creation.
type Customer struct {
	ID            string
	BusinessName  string
	BusinessInfo  string
	Password      string
	ContactFirst  string
	ContactLast   string
	Address       string
	Phone         string
	Email         string
	PaymentMethod string
	CreditInfo    string
	Discount      float64
}

// NewRandomCustomer builds a fully populated customer with a fresh unique
// id, consuming only the given stream. The discount is a fractional
// percentage in [0, 35).
func NewRandomCustomer(rs *g.RandomStream) *Customer {
	return &Customer{
		ID:            rs.UUID(),
		BusinessName:  rs.StringWithLength(5, 20),
		BusinessInfo:  rs.StringWithLength(20, 100),
		Password:      rs.StringWithLength(5, 20),
		ContactFirst:  rs.StringWithLength(5, 15),
		ContactLast:   rs.StringWithLength(5, 15),
		Address:       rs.StringWithLength(30, 100),
		Phone:         fmt.Sprintf("%d", rs.Int63Between(8, 16)),
		Email:         rs.StringWithLength(7, 35),
		PaymentMethod: rs.StringWithLength(1, 2),
		CreditInfo:    rs.StringWithLength(20, 300),
		Discount:      rs.FloatBetween(0, 35),
	}
}

func (self *Customer) TableName() string {
	return "customer"
}

func (self *Customer) InsertColumns() []string {
	return []string{
		"c_id", "c_business_name", "c_business_info", "c_passwd",
		"c_contact_fname", "c_contact_lname", "c_addr", "c_contact_phone",
		"c_contact_email", "c_payment_method", "c_credit_info", "c_discount",
	}
}

func (self *Customer) InsertArgs() []interface{} {
	return []interface{}{
		self.ID, self.BusinessName, self.BusinessInfo, self.Password,
		self.ContactFirst, self.ContactLast, self.Address, self.Phone,
		self.Email, self.PaymentMethod, self.CreditInfo, self.Discount,
	}
}

func (self *Customer) PrimaryKey() (string, string) {
	return "c_id", self.ID
}

func (self *Customer) ScanFrom(row RowScanner) error {
	return row.Scan(
		&self.ID, &self.BusinessName, &self.BusinessInfo, &self.Password,
		&self.ContactFirst, &self.ContactLast, &self.Address, &self.Phone,
		&self.Email, &self.PaymentMethod, &self.CreditInfo, &self.Discount,
	)
}
