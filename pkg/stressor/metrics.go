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

package stressor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// Aggregate selects how samples of one metric are combined across
// instances when the harness produces its final report.
type Aggregate int

const (
	// ArithmeticMean is the plain average of the samples.
	ArithmeticMean Aggregate = iota
	// GeometricMean is the n-th root of the product of the samples.
	GeometricMean
	// HarmonicMean is the reciprocal of the average of reciprocals.
	HarmonicMean
)

// Sink receives named metric samples from stressor engines.
type Sink interface {
	Set(name string, value float64, agg Aggregate)
}

// MetricSet is an in-memory Sink that aggregates samples per metric name.
type MetricSet struct {
	mutex   sync.Mutex
	samples map[string]*metricSamples
}

type metricSamples struct {
	agg    Aggregate
	values []float64
}

// NewMetricSet returns an empty metric sink.
func NewMetricSet() *MetricSet {
	return &MetricSet{
		samples: make(map[string]*metricSamples),
	}
}

// Set records one sample for the named metric. The aggregation type of the
// first sample wins; later samples with a different type are still recorded.
func (m *MetricSet) Set(name string, value float64, agg Aggregate) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s, ok := m.samples[name]
	if !ok {
		s = &metricSamples{agg: agg}
		m.samples[name] = s
	}
	s.values = append(s.values, value)
}

// Value returns the aggregated value for the named metric and whether any
// samples have been recorded for it.
func (m *MetricSet) Value(name string) (float64, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s, ok := m.samples[name]
	if !ok || len(s.values) == 0 {
		return 0.0, false
	}
	return aggregate(s.agg, s.values), true
}

// Names returns the recorded metric names in sorted order.
func (m *MetricSet) Names() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	names := make([]string, 0, len(m.samples))
	for name := range m.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summarize renders all aggregated metrics, one per line.
func (m *MetricSet) Summarize() string {
	lines := []string{}
	for _, name := range m.Names() {
		value, _ := m.Value(name)
		lines = append(lines, fmt.Sprintf("%12.2f %s", value, name))
	}
	return strings.Join(lines, "\n")
}

func aggregate(agg Aggregate, values []float64) float64 {
	n := float64(len(values))
	switch agg {
	case GeometricMean:
		// compute via log-sum to avoid overflowing the product
		logSum := 0.0
		for _, v := range values {
			if v <= 0.0 {
				return 0.0
			}
			logSum += math.Log(v)
		}
		return math.Exp(logSum / n)
	case HarmonicMean:
		recipSum := 0.0
		for _, v := range values {
			if v == 0.0 {
				return 0.0
			}
			recipSum += 1.0 / v
		}
		if recipSum == 0.0 {
			return 0.0
		}
		return n / recipSum
	default:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / n
	}
}
