package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate gives the test an empty collector registry, restoring the
// real one afterwards.
func isolate(t *testing.T) {
	t.Helper()
	saved := collectors
	collectors = make(map[string]InitCollector)
	t.Cleanup(func() { collectors = saved })
}

type constCollector struct {
	desc  *prometheus.Desc
	value float64
}

func (c *constCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *constCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, c.value)
}

func newConstCollector(name string, value float64) *constCollector {
	return &constCollector{
		desc:  prometheus.NewDesc(name, "test metric", nil, nil),
		value: value,
	}
}

func TestRegisterAndGather(t *testing.T) {
	isolate(t)

	require.NoError(t, RegisterCollector("const", func() (prometheus.Collector, error) {
		return newConstCollector("test_const_metric", 42.0), nil
	}))

	gatherer, err := NewMetricGatherer()
	require.NoError(t, err)

	families, err := gatherer.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "test_const_metric", families[0].GetName())
	require.Len(t, families[0].GetMetric(), 1)
	assert.Equal(t, 42.0, families[0].GetMetric()[0].GetGauge().GetValue())
}

func TestRegisterDuplicate(t *testing.T) {
	isolate(t)

	init := func() (prometheus.Collector, error) {
		return newConstCollector("test_dup_metric", 1.0), nil
	}
	require.NoError(t, RegisterCollector("dup", init))
	assert.Error(t, RegisterCollector("dup", init))
}

func TestGathererInitFailure(t *testing.T) {
	isolate(t)

	require.NoError(t, RegisterCollector("broken", func() (prometheus.Collector, error) {
		return nil, fmt.Errorf("no backing data")
	}))

	_, err := NewMetricGatherer()
	assert.Error(t, err)
}
