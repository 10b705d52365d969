package csbench

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hhkbp2/testify/require"
)

func TestQueryLogSequenceNumbers(t *testing.T) {
	queryLog := NewQueryLog(3)
	for n := 0; n < 10; n++ {
		queryLog.Add("SELECT 1", nowTimestamp(), nowTimestamp())
	}
	require.Equal(t, 10, queryLog.Size())
	for i, record := range queryLog.Queries() {
		require.Equal(t, int64(i), record.ExecutingOrderID)
		require.Equal(t, int64(3), record.WorkloadContextID)
	}
}

func TestQueryLogWriteFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "csbench-telemetry")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	queryLog := NewQueryLog(5)
	queryLog.Add("INSERT INTO item", "2022-01-02 11.22.33.444", "2022-01-02 11.22.33.555")
	queryLog.Add("SELECT * FROM item", "2022-01-02 11.22.34.000", "2022-01-02 11.22.34.100")

	path, err := queryLog.WriteFile(filepath.Join(dir, "out"), "run")
	require.Nil(t, err)
	require.Equal(t, "run_5.json", filepath.Base(path))

	b, err := ioutil.ReadFile(path)
	require.Nil(t, err)
	var records []*WorkloadQuery
	require.Nil(t, json.Unmarshal(b, &records))
	require.Equal(t, 2, len(records))
	require.Equal(t, "INSERT INTO item", records[0].SQLString)
	require.Equal(t, int64(5), records[0].WorkloadContextID)
	require.Equal(t, int64(1), records[1].ExecutingOrderID)
	require.Equal(t, "2022-01-02 11.22.33.444", records[0].TimestampBeforeCommit)
	require.Equal(t, "2022-01-02 11.22.33.555", records[0].TimestampAfterCommit)
}

func TestQueryLogWriteFileRefusesOverwrite(t *testing.T) {
	dir, err := ioutil.TempDir("", "csbench-telemetry")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	queryLog := NewQueryLog(1)
	_, err = queryLog.WriteFile(dir, "load")
	require.Nil(t, err)
	_, err = queryLog.WriteFile(dir, "load")
	require.NotNil(t, err)
}

func TestTimestampLayoutRoundTrip(t *testing.T) {
	now := time.Date(2022, 1, 2, 11, 22, 33, 444000000, time.UTC)
	formatted := now.Format(TimestampLayout)
	require.Equal(t, "2022-01-02 11.22.33.444", formatted)
	parsed, err := time.Parse(TimestampLayout, formatted)
	require.Nil(t, err)
	require.True(t, parsed.Equal(now))
}
