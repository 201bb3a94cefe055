/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package instrumentation

import (
	"context"
	"fmt"
	"sync"

	"github.com/siglens/pctlserver/pkg/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type sumcount struct {
	sum      int64
	count    int64
	labelkey string
	labelval string
}

type gaugeSample struct {
	value int64
	attr  attribute.KeyValue
}

// labeledAvgGauge reports, per label, the average of the values set since
// the previous collection.
type labeledAvgGauge struct {
	gauge   metric.Int64ObservableGauge
	lock    sync.Mutex
	entries map[string]*sumcount
}

func newLabeledAvgGauge(name string, unit string, description string) *labeledAvgGauge {
	g, _ := meter.Int64ObservableGauge(name,
		metric.WithUnit(unit),
		metric.WithDescription(description))
	return &labeledAvgGauge{gauge: g, entries: map[string]*sumcount{}}
}

func (g *labeledAvgGauge) set(val int64, labelkey string, labelval string) {
	keystr := fmt.Sprintf("%v:%v", labelkey, labelval)
	g.lock.Lock()
	defer g.lock.Unlock()
	mentry, ok := g.entries[keystr]
	if !ok {
		mentry = &sumcount{labelkey: labelkey, labelval: labelval}
		g.entries[keystr] = mentry
	}
	mentry.sum += val
	mentry.count++
}

func (g *labeledAvgGauge) drain() []gaugeSample {
	g.lock.Lock()
	defer g.lock.Unlock()
	samples := make([]gaugeSample, 0, len(g.entries))
	for mkey, mentry := range g.entries {
		if mentry.count != 0 {
			samples = append(samples, gaugeSample{
				value: mentry.sum / mentry.count,
				attr:  attribute.String(mentry.labelkey, mentry.labelval),
			})
		}
		delete(g.entries, mkey)
	}
	return samples
}

func (g *labeledAvgGauge) emit(_ context.Context, o metric.Observer) error {
	for _, s := range g.drain() {
		o.ObserveInt64(g.gauge, s.value, metric.WithAttributes(s.attr))
	}
	return nil
}

var queryLatencyMs = newLabeledAvgGauge("pctl.query.latency.ms", "milliseconds",
	"average percentile query latency in milliseconds")
var valueCountPerDataset = newLabeledAvgGauge("pctl.dataset.value.count", "count",
	"values held by each dataset")

func SetQueryLatencyMs(val int64, labelkey string, labelval string) {
	queryLatencyMs.set(val, labelkey, labelval)
}

func SetValueCountPerDataset(val int64, dataset string) {
	valueCountPerDataset.set(val, "dataset", dataset)
}

func registerGaugeCallbacks() error {
	for _, g := range []*labeledAvgGauge{queryLatencyMs, valueCountPerDataset} {
		_, err := meter.RegisterCallback(g.emit, g.gauge)
		if err != nil {
			return utils.TeeErrorf("registerGaugeCallbacks: failed to register callback, err=%v", err)
		}
	}
	return nil
}
