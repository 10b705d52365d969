package csbench

import (
	"testing"

	"github.com/hhkbp2/testify/require"
	"github.com/tu-csb/csbench/generator"
	"github.com/tu-csb/csbench/model"
)

func seededCache(customers int, items int, orders int) (*StateCache, *generator.RandomStream) {
	rs := generator.NewRandomStream(42)
	cache := NewStateCache()
	for n := 0; n < customers; n++ {
		cache.AddCustomer(model.NewRandomCustomer(rs))
	}
	for n := 0; n < items; n++ {
		cache.AddItem(model.NewRandomItem(rs))
	}
	for n := 0; n < orders; n++ {
		customer, err := cache.RandomCustomer(rs)
		if err != nil {
			panic(err)
		}
		cache.AddOrder(model.NewRandomOrder(rs, customer.ID))
	}
	return cache, rs
}

func TestStateCacheEmptySampling(t *testing.T) {
	cache := NewStateCache()
	rs := generator.NewRandomStream(42)
	_, err := cache.RandomCustomer(rs)
	require.Equal(t, ErrEmptyCache, err)
	_, err = cache.RandomItem(rs)
	require.Equal(t, ErrEmptyCache, err)
	_, err = cache.RandomOrder(rs)
	require.Equal(t, ErrEmptyCache, err)
	_, err = cache.RandomItems(rs, 3)
	require.Equal(t, ErrEmptyCache, err)
}

func TestStateCacheCountsAndMembership(t *testing.T) {
	cache, _ := seededCache(5, 3, 4)
	require.Equal(t, int64(5), cache.CustomerCount())
	require.Equal(t, int64(3), cache.ItemCount())
	require.Equal(t, int64(4), cache.OrderCount())
}

func TestStateCacheDedupe(t *testing.T) {
	cache := NewStateCache()
	c := model.NewRandomCustomer(generator.NewRandomStream(42))
	cache.AddCustomer(c)
	cache.AddCustomer(c)
	require.Equal(t, int64(1), cache.CustomerCount())
}

func TestStateCacheSamplingStaysInPopulation(t *testing.T) {
	cache, rs := seededCache(10, 10, 10)
	for n := 0; n < 100; n++ {
		customer, err := cache.RandomCustomer(rs)
		require.Nil(t, err)
		require.True(t, cache.HasCustomer(customer.ID))
		item, err := cache.RandomItem(rs)
		require.Nil(t, err)
		require.True(t, cache.HasItem(item.ID))
		order, err := cache.RandomOrder(rs)
		require.Nil(t, err)
		require.True(t, cache.HasOrder(order.ID))
	}
}

func TestStateCacheRandomItemsDistinct(t *testing.T) {
	cache, rs := seededCache(1, 20, 0)
	items, err := cache.RandomItems(rs, 5)
	require.Nil(t, err)
	require.Equal(t, 5, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		require.False(t, seen[item.ID])
		seen[item.ID] = true
	}
}

func TestStateCacheRandomItemsDegenerate(t *testing.T) {
	cache, rs := seededCache(1, 4, 0)
	// asking for more than the population yields the whole population
	items, err := cache.RandomItems(rs, 10)
	require.Nil(t, err)
	require.Equal(t, 4, len(items))
}

func TestStateCacheSyncFrom(t *testing.T) {
	cache, rs := seededCache(3, 3, 3)
	customers := []*model.Customer{model.NewRandomCustomer(rs)}
	items := []*model.Item{model.NewRandomItem(rs), model.NewRandomItem(rs)}
	cache.SyncFrom(customers, items, nil)
	require.Equal(t, int64(1), cache.CustomerCount())
	require.Equal(t, int64(2), cache.ItemCount())
	require.Equal(t, int64(0), cache.OrderCount())
	require.Equal(t, int64(0), cache.OrderLineCount())
	require.True(t, cache.HasCustomer(customers[0].ID))
}

func TestStateCacheCloneIndependence(t *testing.T) {
	cache, rs := seededCache(2, 2, 1)
	clone := cache.Clone()
	require.Equal(t, cache.CustomerCount(), clone.CustomerCount())
	require.Equal(t, cache.OrderCount(), clone.OrderCount())

	clone.AddCustomer(model.NewRandomCustomer(rs))
	require.Equal(t, int64(2), cache.CustomerCount())
	require.Equal(t, int64(3), clone.CustomerCount())

	order, err := cache.RandomOrder(rs)
	require.Nil(t, err)
	clone.AddOrderLine(model.NewRandomOrderLine(rs, order.ID, "item"))
	require.Equal(t, int64(0), cache.OrderLineCount())
	require.Equal(t, int64(1), clone.OrderLineCount())
	require.Equal(t, 0, len(cache.OrderLinesOf(order.ID)))
}
