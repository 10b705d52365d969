package csbench

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"
)

const configFileName = "config.json"

// Client is one executable benchmark phase.
type Client interface {
	Main()
}

// spawnWorkers opens one exclusive connection per worker and builds the
// workers with their per-phase seeds. seedOf spreads the configured base
// seed so no two workers share a random stream.
func spawnWorkers(config *BenchmarkConfig, count int, measurements *Measurements,
	seedOf func(i int64) int64) ([]*Worker, error) {
	addresses := config.ServerAddresses
	if len(addresses) == 0 {
		addresses = []string{""}
	}
	workers := make([]*Worker, 0, count)
	for i := int64(1); i <= int64(count); i++ {
		address := addresses[int(i)%len(addresses)]
		conn, dialect, err := OpenWorkerConn(config, address)
		if err != nil {
			for _, w := range workers {
				w.Close()
			}
			return nil, fmt.Errorf("cannot open connection for worker %d: %w", i, err)
		}
		workers = append(workers, NewWorker(i, seedOf(i), config, conn, dialect, measurements))
	}
	return workers, nil
}

func closeWorkers(workers []*Worker) {
	for _, w := range workers {
		if err := w.Close(); err != nil {
			Errorf("closing worker %d: %s", w.ID(), err)
		}
	}
}

// writeRunArtifacts persists every worker's telemetry log plus the config
// that produced it into the run's output directory.
func writeRunArtifacts(config *BenchmarkConfig, workers []*Worker, outputDir string, prefix string) {
	for _, w := range workers {
		path, err := w.QueryLog().WriteFile(outputDir, prefix)
		if err != nil {
			Errorf("writing telemetry of worker %d: %s", w.ID(), err)
			continue
		}
		Infof("wrote %d telemetry records to %s", w.QueryLog().Size(), path)
	}
	configPath := filepath.Join(outputDir, configFileName)
	if err := config.SaveFile(configPath); err != nil {
		Errorf("writing %s: %s", configPath, err)
	}
}

// Loader runs the load phase: every load worker independently fills the
// database until its local view reaches the configured row targets.
type Loader struct {
	config    *BenchmarkConfig
	outputDir string
}

func NewLoader(config *BenchmarkConfig, outputDir string) *Loader {
	return &Loader{
		config:    config,
		outputDir: outputDir,
	}
}

func (self *Loader) Main() {
	measurements := NewMeasurements()
	workers, err := spawnWorkers(self.config, self.config.ThreadCountLoad, measurements,
		func(i int64) int64 {
			return self.config.Seed - i
		})
	if err != nil {
		ExitOnError("load phase setup failed: %s", err)
	}
	defer closeWorkers(workers)

	if err = workers[0].DAO().CreateTables(); err != nil {
		ExitOnError("cannot create schema: %s", err)
	}

	Printf("starting load phase with %d workers", len(workers))
	start := time.Now()
	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			if err := w.RunLoadPhase(); err != nil {
				Errorf("load worker %d failed: %s", w.ID(), err)
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	writeRunArtifacts(self.config, workers, self.outputDir, "load")
	inserted := int64(0)
	for _, w := range workers {
		inserted += int64(w.QueryLog().Size())
	}
	Printf("load phase done in %s, %d statements, %.1f statements/sec",
		elapsed, inserted, float64(inserted)/elapsed.Seconds())
}

// Runner runs the run phase: workers seed their caches from the persisted
// population, then execute the weighted operation mix in lockstep between
// a shared start and end time.
type Runner struct {
	config    *BenchmarkConfig
	outputDir string
}

func NewRunner(config *BenchmarkConfig, outputDir string) *Runner {
	return &Runner{
		config:    config,
		outputDir: outputDir,
	}
}

// seedBaseState reads the whole persisted population back through one
// dedicated connection.
func (self *Runner) seedBaseState() (*StateCache, error) {
	conn, dialect, err := OpenWorkerConn(self.config, self.firstAddress())
	if err != nil {
		return nil, err
	}
	dao := NewDAO(conn, dialect, NewQueryLog(0))
	defer dao.Close()
	customers, err := dao.GetAllCustomers()
	if err != nil {
		return nil, err
	}
	items, err := dao.GetAllItems()
	if err != nil {
		return nil, err
	}
	orders, err := dao.GetAllOrders()
	if err != nil {
		return nil, err
	}
	base := NewStateCache()
	base.SyncFrom(customers, items, orders)
	Infof("seeded base state: %d customers, %d items, %d orders",
		base.CustomerCount(), base.ItemCount(), base.OrderCount())
	return base, nil
}

func (self *Runner) firstAddress() string {
	if len(self.config.ServerAddresses) > 0 {
		return self.config.ServerAddresses[0]
	}
	return ""
}

func (self *Runner) Main() {
	// the shared start time is fixed before any setup work so all workers
	// begin together once seeding and connection setup are done
	startTime := time.Now().Add(time.Duration(self.config.CoordinationWaitSeconds) * time.Second)
	endTime := startTime.Add(time.Duration(self.config.RunTimeMinutes) * time.Minute)

	base, err := self.seedBaseState()
	if err != nil {
		ExitOnError("run phase setup failed: %s", err)
	}

	measurements := NewMeasurements()
	workers, err := spawnWorkers(self.config, self.config.ThreadCountRun, measurements,
		func(i int64) int64 {
			return self.config.Seed + i
		})
	if err != nil {
		ExitOnError("run phase setup failed: %s", err)
	}
	defer closeWorkers(workers)
	for _, w := range workers {
		w.SyncState(base)
	}

	Printf("starting run phase with %d workers at %s for %d minutes",
		len(workers), startTime.Format(TimestampLayout), self.config.RunTimeMinutes)
	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.RunRunPhase(startTime, endTime)
		}(w)
	}
	wg.Wait()
	actual := time.Since(startTime)

	writeRunArtifacts(self.config, workers, self.outputDir, "run")
	total := measurements.TotalOperations()
	planned := endTime.Sub(startTime)
	Printf("run phase done, %d operations in %s, %.1f operations/sec (%.1f over the planned %s)",
		total, actual, float64(total)/actual.Seconds(),
		float64(total)/planned.Seconds(), planned)
	Printf("%s", measurements.Summary())
}
