package csbench

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/codahale/hdrhistogram"
)

// StatusType classifies the outcome of one executed operation.
type StatusType int

const (
	StatusOK StatusType = 1 + iota
	StatusError
	StatusRetriesExhausted
	StatusEmptyCache
)

func (self StatusType) String() string {
	switch self {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusRetriesExhausted:
		return "RETRIES_EXHAUSTED"
	case StatusEmptyCache:
		return "EMPTY_CACHE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(self))
	}
}

// OneMeasurement aggregates the latency histogram and status counts of a
// single operation type across all workers.
type OneMeasurement struct {
	name         string
	histogram    *hdrhistogram.Histogram
	returnCodes  map[StatusType]int64
	operations   int64
	totalLatency int64
	lock         sync.Mutex
}

func NewOneMeasurement(name string) *OneMeasurement {
	return &OneMeasurement{
		name: name,
		// track 1 microsecond up to 10 seconds at 3 significant digits
		histogram:   hdrhistogram.New(1, 10000000, 3),
		returnCodes: make(map[StatusType]int64),
	}
}

// Measure records one latency sample in microseconds.
func (self *OneMeasurement) Measure(latencyMicros int64) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.histogram.RecordValue(latencyMicros)
	self.operations++
	self.totalLatency += latencyMicros
}

func (self *OneMeasurement) ReportStatus(status StatusType) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.returnCodes[status]++
}

func (self *OneMeasurement) Operations() int64 {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.operations
}

// Summary renders the aggregate line for this operation.
func (self *OneMeasurement) Summary() string {
	self.lock.Lock()
	defer self.lock.Unlock()
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("[%s] operations=%d", self.name, self.operations))
	if self.operations > 0 {
		buf.WriteString(fmt.Sprintf(
			" avg_us=%d min_us=%d max_us=%d p95_us=%d p99_us=%d",
			self.totalLatency/self.operations,
			self.histogram.Min(), self.histogram.Max(),
			self.histogram.ValueAtQuantile(95), self.histogram.ValueAtQuantile(99)))
	}
	statuses := make([]int, 0, len(self.returnCodes))
	for status := range self.returnCodes {
		statuses = append(statuses, int(status))
	}
	sort.Ints(statuses)
	for _, status := range statuses {
		s := StatusType(status)
		buf.WriteString(fmt.Sprintf(" %s=%d", s, self.returnCodes[s]))
	}
	return buf.String()
}

// Measurements collects per-operation measurements across all workers.
type Measurements struct {
	measurements map[string]*OneMeasurement
	lock         sync.RWMutex
}

func NewMeasurements() *Measurements {
	return &Measurements{
		measurements: make(map[string]*OneMeasurement),
	}
}

func (self *Measurements) getOpMeasurement(operation string) *OneMeasurement {
	self.lock.RLock()
	m, ok := self.measurements[operation]
	self.lock.RUnlock()
	if ok {
		return m
	}
	self.lock.Lock()
	defer self.lock.Unlock()
	m, ok = self.measurements[operation]
	if !ok {
		m = NewOneMeasurement(operation)
		self.measurements[operation] = m
	}
	return m
}

func (self *Measurements) Measure(operation string, latencyMicros int64) {
	self.getOpMeasurement(operation).Measure(latencyMicros)
}

func (self *Measurements) ReportStatus(operation string, status StatusType) {
	self.getOpMeasurement(operation).ReportStatus(status)
}

func (self *Measurements) TotalOperations() int64 {
	self.lock.RLock()
	defer self.lock.RUnlock()
	total := int64(0)
	for _, m := range self.measurements {
		total += m.Operations()
	}
	return total
}

// Summary renders one line per operation, sorted by operation name.
func (self *Measurements) Summary() string {
	self.lock.RLock()
	defer self.lock.RUnlock()
	names := make([]string, 0, len(self.measurements))
	for name := range self.measurements {
		names = append(names, name)
	}
	sort.Strings(names)
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(self.measurements[name].Summary())
		buf.WriteString("\n")
	}
	return buf.String()
}
