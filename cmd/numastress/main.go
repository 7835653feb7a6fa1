// Copyright 2024 The numastress Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	logger "github.com/stress-tools/numastress/pkg/log"
	"github.com/stress-tools/numastress/pkg/metrics"
	"github.com/stress-tools/numastress/pkg/numa"
	"github.com/stress-tools/numastress/pkg/pidfile"
	"github.com/stress-tools/numastress/pkg/stressor"
	// registers the -version flag
	_ "github.com/stress-tools/numastress/pkg/version"
)

// exit codes of the CLI driver
const (
	exitSuccess = 0
	exitFailure = 1
	exitSkipped = 2
)

var log = logger.NewLogger("main")

// main only translates run's result into the process exit code so the
// deferred cleanups inside run always complete.
func main() {
	os.Exit(run())
}

func run() int {
	optBytes := flag.String("bytes", "",
		"size of the memory region to exercise, accepts K/M/G suffixes (default 4M)")
	optShuffleAddr := flag.Bool("shuffle-addr", false,
		"shuffle page addresses before every page-move call")
	optShuffleNode := flag.Bool("shuffle-node", false,
		"shuffle destination nodes before every page-move call")
	optOps := flag.Uint64("ops", 0,
		"stop after this many bogo operations, 0 means unlimited")
	optTimeout := flag.Duration("timeout", 0,
		"stop after this run time, 0 means unlimited")
	optInstances := flag.Int("instances", 1,
		"number of concurrently run instances the region size is shared between")
	optInstance := flag.Int("instance", 0,
		"index of this instance within the harness")
	optPidFile := flag.String("pidfile", "",
		"write the process id to this file for the duration of the run")
	optAddress := flag.String("address", "",
		"HTTP listen address for prometheus metrics, empty disables the endpoint")
	optDebug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *optDebug {
		logger.EnableDebug(true)
	}
	defer logger.Flush()

	bytes := uint64(0)
	if *optBytes != "" {
		var err error
		if bytes, err = parseBytes(*optBytes); err != nil {
			log.Error("invalid -bytes: %v", err)
			return exitFailure
		}
	}

	return withPidfile(*optPidFile, func() int {
		metricSet := stressor.NewMetricSet()
		args := &stressor.Args{
			Name:      "numa",
			Instance:  *optInstance,
			Instances: *optInstances,
			Pid:       os.Getpid(),
			PageSize:  os.Getpagesize(),
			Metrics:   metricSet,
		}
		if *optOps > 0 {
			opsLimit := *optOps
			args.Continue = func() bool { return args.BogoOps() < opsLimit }
		}

		engine := numa.New(args, numa.Config{
			Bytes:       bytes,
			ShuffleAddr: *optShuffleAddr,
			ShuffleNode: *optShuffleNode,
			Timeout:     *optTimeout,
		})

		if *optAddress != "" {
			if err := serveMetrics(engine, *optAddress); err != nil {
				log.Error("%v", err)
				return exitFailure
			}
		}

		if err := engine.Init(); err != nil {
			if errors.Is(err, stressor.ErrNoResource) {
				log.Warn("skipping: %v", err)
				return exitSkipped
			}
			log.Error("init failed: %v", err)
			return exitFailure
		}

		status := engine.Run()
		if err := engine.Teardown(); err != nil {
			log.Error("teardown: %v", err)
		}

		log.Info("run finished: %s, %d bogo ops", status, args.BogoOps())
		if summary := metricSet.Summarize(); summary != "" {
			fmt.Println(summary)
		}

		switch status {
		case stressor.Success:
			return exitSuccess
		case stressor.NoResource:
			return exitSkipped
		default:
			return exitFailure
		}
	})
}

// withPidfile surrounds fn with pidfile creation and removal when a
// path is given. The pidfile is removed on every path out of fn.
func withPidfile(path string, fn func() int) int {
	if path != "" {
		pidfile.SetPath(path)
		if err := pidfile.Write(); err != nil {
			log.Error("%v", err)
			return exitFailure
		}
		defer pidfile.Remove()
	}
	return fn()
}

// serveMetrics registers the engine collector and starts the metrics
// endpoint in the background.
func serveMetrics(engine *numa.Engine, address string) error {
	collector := numa.NewCollector(engine)
	if err := collector.Register(); err != nil {
		return err
	}
	gatherer, err := metrics.NewMetricGatherer()
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(address, mux); err != nil {
			log.Error("metrics endpoint failed: %v", err)
		}
	}()
	return nil
}

// parseBytes parses a byte size with an optional K/M/G suffix.
func parseBytes(s string) (uint64, error) {
	multiplier := uint64(1)
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		multiplier = 1 << 10
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		multiplier = 1 << 20
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "G"), strings.HasSuffix(s, "g"):
		multiplier = 1 << 30
		s = s[:len(s)-1]
	}
	value, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return value * multiplier, nil
}
