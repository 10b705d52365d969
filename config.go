package csbench

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
)

const (
	DefaultDatabaseName = "tpc_w_light"
	DefaultDatabaseUser = "root"
	DefaultDatabasePort = 26257
	DefaultDriver       = "postgres"
)

// OperationWeight assigns a selection percentage to one named run-phase
// operation. The config keeps an ordered list rather than a map so the
// persisted JSON and the chooser's flat sequence are stable across runs.
type OperationWeight struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// BenchmarkConfig carries every parameter of one benchmark run. It is
// persisted as JSON into the run's output directory before the run starts
// and read back from there, so the file on disk is the audit record of what
// actually ran.
type BenchmarkConfig struct {
	// load phase row targets; each load worker drives its locally visible
	// cache to these counts (see Worker.RunLoadPhase for the semantics)
	CustomerInsertsLoadPhase int64 `json:"dbCustomerInsertsLoadPhase"`
	ItemInsertsLoadPhase     int64 `json:"dbItemInsertsLoadPhase"`
	OrderInsertsLoadPhase    int64 `json:"dbOrderInsertsLoadPhase"`

	ThreadCountLoad int   `json:"threadCountLoad"`
	ThreadCountRun  int   `json:"threadCountRun"`
	Seed            int64 `json:"seed"`

	OperationWeights []OperationWeight `json:"useCasesProbabilityDistribution"`

	RunTimeMinutes          int `json:"minRunTimeOfRunPhaseInMinutes"`
	CoordinationWaitSeconds int `json:"initialWaitTimeForCoordinationInSeconds"`

	Driver          string   `json:"driver"`
	ServerAddresses []string `json:"serverAddresses"`
	DatabaseName    string   `json:"databaseName"`
	DatabaseUser    string   `json:"databaseUser"`
	DatabasePort    int      `json:"databasePort"`
}

// DefaultBenchmarkConfig returns the stock TPC-W-like mix: mostly item and
// customer reads, a trickle of new orders, customers and price updates.
func DefaultBenchmarkConfig() *BenchmarkConfig {
	customers := int64(1000)
	return &BenchmarkConfig{
		CustomerInsertsLoadPhase: customers,
		ItemInsertsLoadPhase:     200,
		OrderInsertsLoadPhase:    int64(float64(customers) * 1.2),
		ThreadCountLoad:          2,
		ThreadCountRun:           10,
		Seed:                     2122,
		RunTimeMinutes:           1,
		CoordinationWaitSeconds:  5,
		OperationWeights: []OperationWeight{
			{"fetchRandomTopSellerItem", 35},
			{"fetchRandomItem", 20},
			{"fetchRandomCustomer", 10},
			{"fetchOrdersFromRandomCustomer", 5},
			{"fetchOrderLinesFromRandomOrder", 5},
			{"fetchItemsSortedByName", 5},
			{"fetchItemsSortedByPrice", 5},
			{"fetchItemsWithStringInName", 5},
			{"insertNewOrder", 6},
			{"insertNewCustomer", 1},
			{"fetchAllCustomersWithOpenOrders", 1},
			{"updateItemPrice", 2},
		},
		Driver:       DefaultDriver,
		DatabaseName: DefaultDatabaseName,
		DatabaseUser: DefaultDatabaseUser,
		DatabasePort: DefaultDatabasePort,
	}
}

// TotalWeight sums the operation weight table.
func (self *BenchmarkConfig) TotalWeight() int {
	total := 0
	for _, w := range self.OperationWeights {
		total += w.Weight
	}
	return total
}

// Validate reports settings no run could proceed with. A weight table that
// does not sum to 100 is only warned about; the scheduler operates over
// whatever total it was given.
func (self *BenchmarkConfig) Validate() error {
	if self.ThreadCountLoad < 1 || self.ThreadCountRun < 1 {
		return fmt.Errorf("thread counts must be at least 1, got load=%d run=%d",
			self.ThreadCountLoad, self.ThreadCountRun)
	}
	if self.RunTimeMinutes < 1 {
		return fmt.Errorf("run time must be at least 1 minute, got %d", self.RunTimeMinutes)
	}
	if len(self.ServerAddresses) == 0 && self.Driver != "basic" {
		return fmt.Errorf("no server addresses configured")
	}
	if total := self.TotalWeight(); total != 100 {
		Warnf("summed probability is %d and not 100!", total)
	}
	return nil
}

// SaveFile writes the config as pretty-printed JSON. The file must not
// exist yet; every run gets its own directory.
func (self *BenchmarkConfig) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(self, "", "  ")
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err = f.Write(b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadBenchmarkConfig reads a config previously written with SaveFile.
func LoadBenchmarkConfig(path string) (*BenchmarkConfig, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := &BenchmarkConfig{}
	if err = json.Unmarshal(b, config); err != nil {
		return nil, fmt.Errorf("cannot parse benchmark config %s: %w", path, err)
	}
	return config, nil
}
