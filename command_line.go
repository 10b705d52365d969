package csbench

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const usageText = `usage: csbench [options] <server> <seed> <minutes> <mode>

  server   database server address, or "-" for the configured addresses
  seed     base random seed, split per worker and phase
  minutes  minimum run time of the run phase
  mode     "load" fills the database, "run" executes the operation mix

options:
`

func Usage() {
	EPrintf(usageText)
	flag.PrintDefaults()
}

// Main parses the command line, assembles the effective config and
// dispatches the requested phase. Telemetry and the effective config land
// in workload/<start timestamp>/.
func Main() {
	var configFile string
	var driver string
	var logLevelName string
	flag.Usage = Usage
	flag.StringVar(&configFile, "P", "", "load benchmark config from `file`")
	flag.StringVar(&driver, "d", "", "database driver (postgres, cockroach, mysql, basic)")
	flag.StringVar(&logLevelName, "l", "info", "log level (quiet, error, warn, info, debug, verbose)")
	flag.Parse()
	SetLogLevel(logLevelName)

	args := flag.Args()
	if len(args) != 4 {
		Usage()
		os.Exit(1)
	}
	server, seedArg, minutesArg, mode := args[0], args[1], args[2], args[3]

	config := DefaultBenchmarkConfig()
	if len(configFile) > 0 {
		loaded, err := LoadBenchmarkConfig(configFile)
		if err != nil {
			ExitOnError("%s", err)
		}
		config = loaded
	}
	if len(driver) > 0 {
		config.Driver = driver
	}
	if server != "-" {
		config.ServerAddresses = []string{server}
	}
	seed, err := strconv.ParseInt(seedArg, 10, 64)
	if err != nil {
		ExitOnError("invalid seed %q: %s", seedArg, err)
	}
	config.Seed = seed
	minutes, err := strconv.Atoi(minutesArg)
	if err != nil {
		ExitOnError("invalid run time %q: %s", minutesArg, err)
	}
	config.RunTimeMinutes = minutes
	if err = config.Validate(); err != nil {
		ExitOnError("invalid benchmark config: %s", err)
	}

	outputDir := filepath.Join("workload", time.Now().Format(TimestampLayout))
	var client Client
	switch mode {
	case "load":
		client = NewLoader(config, outputDir)
	case "run":
		client = NewRunner(config, outputDir)
	default:
		ExitOnError("unknown mode %q, expected \"load\" or \"run\"", mode)
	}
	client.Main()
}
