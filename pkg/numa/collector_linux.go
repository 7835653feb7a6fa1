//go:build linux
// +build linux

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

package numa

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stress-tools/numastress/pkg/metrics"
)

// Prometheus metric descriptor indices and descriptor table
const (
	numaHitDesc = iota
	numaMissDesc
	bogoOpsDesc
	reportedFailuresDesc
	numDescriptors
)

var descriptors = [numDescriptors]*prometheus.Desc{
	numaHitDesc: prometheus.NewDesc(
		"numa_hit_total",
		"Allocations satisfied on the intended node",
		[]string{"node"}, nil,
	),
	numaMissDesc: prometheus.NewDesc(
		"numa_miss_total",
		"Allocations redirected away from the intended node",
		[]string{"node"}, nil,
	),
	bogoOpsDesc: prometheus.NewDesc(
		"numastress_bogo_ops_total",
		"Completed exercise iterations",
		nil, nil,
	),
	reportedFailuresDesc: prometheus.NewDesc(
		"numastress_reported_failures_total",
		"Unexpected kernel call outcomes",
		nil, nil,
	),
}

// Collector exposes the per-node allocation counters and engine
// progress as prometheus metrics.
type Collector struct {
	engine *Engine
}

// NewCollector creates a collector over the given engine instance.
func NewCollector(engine *Engine) *Collector {
	return &Collector{engine: engine}
}

// Register registers the collector for metrics collection.
func (c *Collector) Register() error {
	return metrics.RegisterCollector("numa", func() (prometheus.Collector, error) {
		return c, nil
	})
}

// Describe implements prometheus.Collector interface
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range descriptors {
		ch <- d
	}
}

// Collect implements prometheus.Collector interface
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	perNode, _ := ReadNodeCounters()
	for node, counters := range perNode {
		label := strconv.Itoa(node)
		ch <- prometheus.MustNewConstMetric(descriptors[numaHitDesc],
			prometheus.CounterValue, float64(counters.Hit), label)
		ch <- prometheus.MustNewConstMetric(descriptors[numaMissDesc],
			prometheus.CounterValue, float64(counters.Miss), label)
	}
	ch <- prometheus.MustNewConstMetric(descriptors[bogoOpsDesc],
		prometheus.CounterValue, float64(c.engine.args.BogoOps()))
	ch <- prometheus.MustNewConstMetric(descriptors[reportedFailuresDesc],
		prometheus.CounterValue, float64(c.engine.Tally().Reported()))
}
