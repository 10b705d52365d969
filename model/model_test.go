package model

import (
	"testing"
	"time"

	"github.com/hhkbp2/testify/require"
	g "github.com/tu-csb/csbench/generator"
)

func TestNewRandomCustomer(t *testing.T) {
	rs := g.NewRandomStream(42)
	c := NewRandomCustomer(rs)
	require.Equal(t, 36, len(c.ID))
	require.True(t, c.Discount >= 0 && c.Discount < 35)
	require.Equal(t, len(c.InsertColumns()), len(c.InsertArgs()))
}

func TestNewRandomItemCostBelowSRP(t *testing.T) {
	rs := g.NewRandomStream(42)
	for i := 0; i < 1000; i++ {
		item := NewRandomItem(rs)
		require.True(t, item.Cost <= item.SRP)
		require.True(t, item.SRP >= 5 && item.SRP < 120)
		require.True(t, item.PageCount >= 10 && item.PageCount <= 1800)
	}
}

func TestNewRandomOrderTotals(t *testing.T) {
	rs := g.NewRandomStream(42)
	for i := 0; i < 1000; i++ {
		o := NewRandomOrder(rs, "customer-1")
		require.Equal(t, "customer-1", o.CustomerID)
		require.Equal(t, o.SubTotal*0.19, o.Tax)
		require.Equal(t, o.SubTotal+o.Tax, o.Total)
		delay := o.ShipDate.Sub(o.Date)
		require.True(t, delay >= 2*24*time.Hour && delay <= 5*24*time.Hour)
	}
}

func TestNewRandomOrderLine(t *testing.T) {
	rs := g.NewRandomStream(42)
	for i := 0; i < 1000; i++ {
		ol := NewRandomOrderLine(rs, "order-1", "item-1")
		require.Equal(t, "order-1", ol.OrderID)
		require.Equal(t, "item-1", ol.ItemID)
		require.True(t, ol.Quantity >= 1 && ol.Quantity <= 100)
		require.True(t, ol.Discount >= 0 && ol.Discount < 100)
	}
}

func TestFactoryDeterminism(t *testing.T) {
	c1 := NewRandomCustomer(g.NewRandomStream(7))
	c2 := NewRandomCustomer(g.NewRandomStream(7))
	require.Equal(t, c1, c2)
}
