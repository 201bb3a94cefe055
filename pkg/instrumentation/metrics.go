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
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

var meter = otel.GetMeterProvider().Meter("pctlserver")
var ctx = context.Background()

var metricsPkgInitialized bool
var initLock sync.Mutex

// InitMetrics installs the prometheus exporter as the global meter provider
// and serves /metrics on the given port.
func InitMetrics(port uint64) error {
	initLock.Lock()
	defer initLock.Unlock()
	if metricsPkgInitialized {
		return nil
	}
	exporter, err := prometheus.New()
	if err != nil {
		log.Errorf("InitMetrics: failed to initialize prometheus exporter: %v", err)
		return err
	}
	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	err = registerGaugeCallbacks()
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Errorf("InitMetrics: metrics server on %v stopped: %v", addr, err)
		}
	}()

	log.Infof("OpenTelemetry Prometheus exporter running on %v", addr)
	metricsPkgInitialized = true
	return nil
}

func IncrementInt64Counter(metricName api.Int64Counter, value int64) {
	metricName.Add(ctx, value)
}

func IncrementInt64CounterWithLabels(metricName api.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	metricName.Add(ctx, value, api.WithAttributes(attrs...))
}

func RecordFloat64Histogram(metricName api.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	metricName.Record(ctx, value, api.WithAttributes(attrs...))
}

func RecordInt64Histogram(metricName api.Int64Histogram, value int64, attrs ...attribute.KeyValue) {
	metricName.Record(ctx, value, api.WithAttributes(attrs...))
}
