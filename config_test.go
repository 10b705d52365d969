package csbench

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hhkbp2/testify/require"
)

func TestDefaultBenchmarkConfig(t *testing.T) {
	config := DefaultBenchmarkConfig()
	require.Equal(t, 100, config.TotalWeight())
	require.Equal(t, 12, len(config.OperationWeights))
	require.Nil(t, config.Validate())
	for _, w := range config.OperationWeights {
		_, ok := Operations[w.Name]
		require.True(t, ok, "weight table references unknown operation %q", w.Name)
	}
}

func TestConfigValidateRejectsBadSettings(t *testing.T) {
	config := DefaultBenchmarkConfig()
	config.ThreadCountLoad = 0
	require.NotNil(t, config.Validate())

	config = DefaultBenchmarkConfig()
	config.RunTimeMinutes = 0
	require.NotNil(t, config.Validate())

	config = DefaultBenchmarkConfig()
	config.Driver = "postgres"
	config.ServerAddresses = nil
	require.NotNil(t, config.Validate())
}

func TestConfigWeightMismatchIsNotFatal(t *testing.T) {
	config := DefaultBenchmarkConfig()
	config.OperationWeights = config.OperationWeights[:3]
	require.True(t, config.TotalWeight() != 100)
	require.Nil(t, config.Validate())
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "csbench-config")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	config := DefaultBenchmarkConfig()
	config.Seed = 999
	config.ServerAddresses = []string{"db1", "db2"}
	path := filepath.Join(dir, "run", "config.json")
	require.Nil(t, config.SaveFile(path))

	loaded, err := LoadBenchmarkConfig(path)
	require.Nil(t, err)
	require.Equal(t, config.Seed, loaded.Seed)
	require.Equal(t, config.ServerAddresses, loaded.ServerAddresses)
	require.Equal(t, config.OperationWeights, loaded.OperationWeights)
	require.Equal(t, config.CustomerInsertsLoadPhase, loaded.CustomerInsertsLoadPhase)

	// a second save into the same run directory must not overwrite
	require.NotNil(t, config.SaveFile(path))
}

func TestConfigJSONFieldNames(t *testing.T) {
	dir, err := ioutil.TempDir("", "csbench-config")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.json")
	require.Nil(t, DefaultBenchmarkConfig().SaveFile(path))
	b, err := ioutil.ReadFile(path)
	require.Nil(t, err)
	content := string(b)
	for _, field := range []string{
		"dbCustomerInsertsLoadPhase",
		"dbItemInsertsLoadPhase",
		"dbOrderInsertsLoadPhase",
		"useCasesProbabilityDistribution",
		"minRunTimeOfRunPhaseInMinutes",
		"initialWaitTimeForCoordinationInSeconds",
	} {
		require.True(t, strings.Contains(content, field), "missing field %q", field)
	}
}
