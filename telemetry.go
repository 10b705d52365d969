package csbench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TimestampLayout is the wall-clock format stamped on every telemetry
// record, millisecond resolution. The downstream analysis stage parses
// these strings, so the layout is part of the telemetry file contract.
const TimestampLayout = "2006-01-02 15.04.05.000"

// WorkloadQuery is one captured statement execution. The record shape is a
// public contract consumed by the offline latency analysis.
type WorkloadQuery struct {
	SQLString             string `json:"sqlString"`
	WorkloadContextID     int64  `json:"workloadContextId"`
	ExecutingOrderID      int64  `json:"executingOrderId"`
	TimestampBeforeCommit string `json:"timestampBeforeCommit"`
	TimestampAfterCommit  string `json:"timestampAfterCommit"`
}

// QueryLog is the append-only telemetry recorder of one worker. Records
// carry strictly increasing, never reused sequence numbers in execution
// order. Each log is owned by exactly one worker goroutine, so it is
// deliberately unlocked; ordering across workers is established later by
// timestamp, not by sequence number.
type QueryLog struct {
	workerID int64
	nextID   int64
	queries  []*WorkloadQuery
}

func NewQueryLog(workerID int64) *QueryLog {
	return &QueryLog{
		workerID: workerID,
		queries:  make([]*WorkloadQuery, 0),
	}
}

// Add appends one record with the next sequence number.
func (self *QueryLog) Add(sqlString string, beforeCommit string, afterCommit string) {
	self.queries = append(self.queries, &WorkloadQuery{
		SQLString:             sqlString,
		WorkloadContextID:     self.workerID,
		ExecutingOrderID:      self.nextID,
		TimestampBeforeCommit: beforeCommit,
		TimestampAfterCommit:  afterCommit,
	})
	self.nextID++
}

func (self *QueryLog) WorkerID() int64 {
	return self.workerID
}

func (self *QueryLog) Size() int {
	return len(self.queries)
}

func (self *QueryLog) Queries() []*WorkloadQuery {
	return self.queries
}

// WriteFile serializes the log to <dir>/<prefix>_<workerID>.json and
// returns the written path.
func (self *QueryLog) WriteFile(dir string, prefix string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(self.queries, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.json", prefix, self.workerID))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}
	if _, err = f.Write(b); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
