//
// Copyright 2019 Insolar Technologies GmbH
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
//

package observability

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/configuration"
)

const namespace = "hook"

func Make(cfg configuration.Log) *Observability {
	return &Observability{
		log:      newLogger(cfg),
		metrics:  prometheus.NewRegistry(),
		counters: make(map[string]prometheus.Counter),
		gauges:   make(map[string]prometheus.Gauge),
	}
}

func newLogger(cfg configuration.Log) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		log.WithField("level", cfg.Level).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

type Observability struct {
	log     *logrus.Logger
	metrics *prometheus.Registry

	mu       sync.Mutex
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
}

func (o *Observability) Log() *logrus.Logger {
	return o.log
}

func (o *Observability) Metrics() *prometheus.Registry {
	return o.metrics
}

func (o *Observability) Counter(opts prometheus.CounterOpts) prometheus.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()

	c, ok := o.counters[opts.Name]
	if ok {
		return c
	}
	c = prometheus.NewCounter(opts)
	err := o.metrics.Register(c)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return c
	}
	o.counters[opts.Name] = c
	return c
}

func (o *Observability) Gauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	o.mu.Lock()
	defer o.mu.Unlock()

	g, ok := o.gauges[opts.Name]
	if ok {
		return g
	}
	g = prometheus.NewGauge(opts)
	err := o.metrics.Register(g)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return g
	}
	o.gauges[opts.Name] = g
	return g
}

// IndexerMetrics counts what one indexing stage did to each kind of entity.
type IndexerMetrics struct {
	Receipts       prometheus.Counter
	Slots          prometheus.Counter
	WhaleTransfers prometheus.Counter
}

// MakeIndexerMetrics registers hook_<field>_<action>_total for every field.
func MakeIndexerMetrics(obs *Observability, action string) *IndexerMetrics {
	counters := &IndexerMetrics{}
	v := reflect.ValueOf(counters).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := toSnake(t.Field(i).Name)
		opts := prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_%s_%s_total", namespace, field, action),
			Help: fmt.Sprintf("Number of %s %s.", strings.Replace(field, "_", " ", -1), action),
		}
		v.Field(i).Set(reflect.ValueOf(obs.Counter(opts)))
	}
	return counters
}

type CommonMetrics struct {
	LastSlot           prometheus.Gauge
	SlotProcessingTime prometheus.Gauge
	PublishFailures    prometheus.Counter
}

func MakeCommonMetrics(obs *Observability) *CommonMetrics {
	return &CommonMetrics{
		LastSlot: obs.Gauge(prometheus.GaugeOpts{
			Name: "hook_last_indexed_slot",
			Help: "Last ledger slot stored by the indexer.",
		}),
		SlotProcessingTime: obs.Gauge(prometheus.GaugeOpts{
			Name: "hook_batch_processing_time",
			Help: "Seconds spent on processing one batch of receipts",
		}),
		PublishFailures: obs.Counter(prometheus.CounterOpts{
			Name: "hook_publish_failures_total",
			Help: "Number of whale transfer batches the broker rejected.",
		}),
	}
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
