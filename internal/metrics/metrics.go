// Package metrics implements dict.MetricsRecorder with Prometheus
// gauges and counters registered through promauto, the same pattern
// the rest of the stack uses for its pool and cache instrumentation.
// A Recorder is entirely optional — dict runs fine with a nil
// Metrics field — so every metric here lives behind a constructor
// rather than package-level globals, letting a process run more than
// one dictionary under distinct label values.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rkvcore/rkv/dict"
)

// Recorder implements dict.MetricsRecorder for a single named
// dictionary instance.
type Recorder struct {
	rehashSteps    prometheus.Counter
	rehashFinishes prometheus.Counter
	tableSlots     prometheus.Gauge
	iteratorsOpen  prometheus.Gauge
}

// NewRecorder registers a family of metrics labelled with name (e.g.
// "keyspace", "expires") and returns a Recorder ready to attach to a
// dict.Dict's Metrics field.
func NewRecorder(reg prometheus.Registerer, name string) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		rehashSteps: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "rkv",
			Name:        "dict_rehash_steps_total",
			Help:        "Number of incremental rehash steps performed.",
			ConstLabels: prometheus.Labels{"dict": name},
		}),
		rehashFinishes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "rkv",
			Name:        "dict_rehash_finished_total",
			Help:        "Number of rehash operations that completed.",
			ConstLabels: prometheus.Labels{"dict": name},
		}),
		tableSlots: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rkv",
			Name:        "dict_slots",
			Help:        "Total bucket slots across both sub-tables.",
			ConstLabels: prometheus.Labels{"dict": name},
		}),
		iteratorsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rkv",
			Name:        "dict_iterators_open",
			Help:        "Number of currently live safe iterators.",
			ConstLabels: prometheus.Labels{"dict": name},
		}),
	}
}

// RehashStepped is invoked once per bucket migrated.
func (r *Recorder) RehashStepped(d *dict.Dict) {
	r.rehashSteps.Inc()
	r.tableSlots.Set(float64(d.Slots()))
}

// RehashFinished is invoked when a rehash completes.
func (r *Recorder) RehashFinished(d *dict.Dict) {
	r.rehashFinishes.Inc()
	r.tableSlots.Set(float64(d.Slots()))
}

// TableExpanded is invoked whenever Expand allocates a new sub-table
// and starts rehashing into it. It is not invoked when Expand allocates
// the first table of an empty dictionary.
func (r *Recorder) TableExpanded(d *dict.Dict, oldSize, newSize uint64) {
	r.tableSlots.Set(float64(d.Slots()))
}

// IteratorOpened tracks a newly opened iterator.
func (r *Recorder) IteratorOpened(safe bool) {
	if safe {
		r.iteratorsOpen.Inc()
	}
}

// IteratorClosed tracks an iterator going out of scope.
func (r *Recorder) IteratorClosed(safe bool) {
	if safe {
		r.iteratorsOpen.Dec()
	}
}
