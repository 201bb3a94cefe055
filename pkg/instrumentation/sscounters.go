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
	"go.opentelemetry.io/otel/metric"
)

var PERCENTILE_QUERY_COUNT, _ = meter.Int64Counter(
	"pctl.query.count",
	metric.WithUnit("1"),
	metric.WithDescription("percentile queries received"))

var PERCENTILE_QUERY_ERRORS, _ = meter.Int64Counter(
	"pctl.query.errors",
	metric.WithUnit("1"),
	metric.WithDescription("percentile queries that failed"))

var PERCENTILE_QUERY_REJECTED, _ = meter.Int64Counter(
	"pctl.query.rejected",
	metric.WithUnit("1"),
	metric.WithDescription("percentile queries rejected by the rate limiter"))

var PERCENTILE_QUERY_DURATION, _ = meter.Float64Histogram(
	"pctl.query.duration",
	metric.WithUnit("s"),
	metric.WithDescription("wall clock duration of the estimator call"))

var PERCENTILE_ITERATIONS, _ = meter.Int64Histogram(
	"pctl.iterative.iterations",
	metric.WithUnit("1"),
	metric.WithDescription("iterations used by the iterative estimator"))

var VALUES_INGESTED, _ = meter.Int64Counter(
	"pctl.values.ingested",
	metric.WithUnit("1"),
	metric.WithDescription("values written into datasets"))
