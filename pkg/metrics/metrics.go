package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	logger "github.com/stress-tools/numastress/pkg/log"
)

var (
	collectors = make(map[string]InitCollector)
	log        = logger.NewLogger("collectors")
)

// InitCollector is the type for functions that initialize collectors.
type InitCollector func() (prometheus.Collector, error)

// RegisterCollector registers the named prometheus.Collector for metrics collection.
func RegisterCollector(name string, init InitCollector) error {
	if _, found := collectors[name]; found {
		return metricsError("collector %s already registered", name)
	}

	log.Info("registering collector %s...", name)
	collectors[name] = init

	return nil
}

// NewMetricGatherer creates a new prometheus.Gatherer with all registered collectors.
func NewMetricGatherer() (prometheus.Gatherer, error) {
	reg := prometheus.NewPedanticRegistry()

	for name, init := range collectors {
		c, err := init()
		if err != nil {
			return nil, metricsError("failed to initialize collector %s: %v", name, err)
		}
		reg.MustRegister(c)
	}

	return reg, nil
}

func metricsError(format string, args ...interface{}) error {
	return fmt.Errorf("metrics: "+format, args...)
}
