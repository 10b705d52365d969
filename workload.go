package csbench

import (
	"errors"
)

const (
	sortedFetchLimit  = 50
	searchFetchLimit  = 50
	newOrderMinLines  = 1
	newOrderMaxLines  = 10
	titleSearchLength = 2
)

// OperationFunc is one run-phase operation executed against a worker.
type OperationFunc func(w *Worker) error

// Operations is the registry of run-phase operations the weight table can
// reference.
var Operations = map[string]OperationFunc{
	"fetchRandomTopSellerItem":        fetchRandomTopSellerItem,
	"fetchRandomItem":                 fetchRandomItem,
	"fetchRandomCustomer":             fetchRandomCustomer,
	"fetchOrdersFromRandomCustomer":   fetchOrdersFromRandomCustomer,
	"fetchOrderLinesFromRandomOrder":  fetchOrderLinesFromRandomOrder,
	"fetchItemsSortedByName":          fetchItemsSortedByName,
	"fetchItemsSortedByPrice":         fetchItemsSortedByPrice,
	"fetchItemsWithStringInName":      fetchItemsWithStringInName,
	"insertNewOrder":                  insertNewOrder,
	"insertNewCustomer":               insertNewCustomer,
	"fetchAllCustomersWithOpenOrders": fetchAllCustomersWithOpenOrders,
	"updateItemPrice":                 updateItemPrice,
}

func statusOf(err error) StatusType {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrRetriesExhausted):
		return StatusRetriesExhausted
	case errors.Is(err, ErrEmptyCache):
		return StatusEmptyCache
	default:
		return StatusError
	}
}

func fetchRandomTopSellerItem(w *Worker) error {
	if len(w.topSellerItems) == 0 {
		return ErrEmptyCache
	}
	item := w.topSellerItems[w.random.IntBetween(0, len(w.topSellerItems)-1)]
	_, err := w.dao.GetItem(item.ID)
	return err
}

func fetchRandomItem(w *Worker) error {
	item, err := w.state.RandomItem(w.random)
	if err != nil {
		return err
	}
	_, err = w.dao.GetItem(item.ID)
	return err
}

func fetchRandomCustomer(w *Worker) error {
	customer, err := w.state.RandomCustomer(w.random)
	if err != nil {
		return err
	}
	_, err = w.dao.GetCustomer(customer.ID)
	return err
}

func fetchOrdersFromRandomCustomer(w *Worker) error {
	customer, err := w.state.RandomCustomer(w.random)
	if err != nil {
		return err
	}
	_, err = w.dao.GetOrdersOfCustomer(customer.ID)
	return err
}

func fetchOrderLinesFromRandomOrder(w *Worker) error {
	order, err := w.state.RandomOrder(w.random)
	if err != nil {
		return err
	}
	_, err = w.dao.GetOrderLinesOfOrder(order.ID)
	return err
}

func fetchItemsSortedByName(w *Worker) error {
	_, err := w.dao.GetItemsSortedByName(sortedFetchLimit)
	return err
}

func fetchItemsSortedByPrice(w *Worker) error {
	_, err := w.dao.GetItemsSortedByPrice(sortedFetchLimit)
	return err
}

// fetchItemsWithStringInName searches titles for a short substring taken
// from a cached item's title, so the search always has something to find.
func fetchItemsWithStringInName(w *Worker) error {
	item, err := w.state.RandomItem(w.random)
	if err != nil {
		return err
	}
	part := item.Title
	if len(part) > titleSearchLength {
		start := w.random.IntBetween(0, len(part)-titleSearchLength)
		part = part[start : start+titleSearchLength]
	}
	_, err = w.dao.GetItemsWithTitleContaining(searchFetchLimit, part)
	return err
}

func insertNewOrder(w *Worker) error {
	_, err := w.InsertOrderWithLines(w.random.IntBetween(newOrderMinLines, newOrderMaxLines))
	return err
}

func insertNewCustomer(w *Worker) error {
	_, err := w.InsertCustomer()
	return err
}

func fetchAllCustomersWithOpenOrders(w *Worker) error {
	_, err := w.dao.GetAllCustomersWithOpenOrders()
	return err
}

func updateItemPrice(w *Worker) error {
	_, err := w.UpdateItemPrice()
	return err
}
