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

package pctlquery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/siglens/pctlserver/pkg/instrumentation"
	"github.com/siglens/pctlserver/pkg/percentile"
	"github.com/siglens/pctlserver/pkg/tracing"
	"github.com/siglens/pctlserver/pkg/utils"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DEFAULT_PERCENTILE = 50
	QueryIdKey         = "qid"
)

func parseRequest(ctx *fasthttp.RequestCtx) (Request, error) {
	args := ctx.QueryArgs()
	req := Request{
		Dataset:    string(args.Peek("dataset")),
		Percentile: DEFAULT_PERCENTILE,
		Method:     MethodExact,
	}

	if raw := args.Peek("percentile"); len(raw) > 0 {
		p, err := strconv.Atoi(string(raw))
		if err != nil {
			return req, fmt.Errorf("parseRequest: percentile %q is not an integer: %w", raw, percentile.ErrInvalidPercentile)
		}
		req.Percentile = p
	}
	if raw := args.Peek("method"); len(raw) > 0 {
		m, err := ParseMethod(string(raw))
		if err != nil {
			return req, err
		}
		req.Method = m
	}
	return req, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, percentile.ErrInvalidPercentile), errors.Is(err, ErrUnknownMethod):
		return fasthttp.StatusBadRequest
	case errors.Is(err, datastore.ErrUnknownDataset):
		return fasthttp.StatusNotFound
	case errors.Is(err, datastore.ErrEmptyDataset):
		return fasthttp.StatusUnprocessableEntity
	case errors.Is(err, datastore.ErrDataStoreUnavailable):
		return fasthttp.StatusServiceUnavailable
	default:
		return fasthttp.StatusInternalServerError
	}
}

func messageForStatus(status int) string {
	switch status {
	case fasthttp.StatusBadRequest:
		return "invalid percentile request"
	case fasthttp.StatusNotFound:
		return "dataset not found"
	case fasthttp.StatusUnprocessableEntity:
		return "dataset is empty"
	case fasthttp.StatusServiceUnavailable:
		return "datastore unavailable"
	default:
		return "failed to compute percentile"
	}
}

// ProcessPercentileRequest serves GET /api/percentile.
func (o *Orchestrator) ProcessPercentileRequest(ctx *fasthttp.RequestCtx) {
	qid := uuid.NewString()
	ctx.SetUserValue(QueryIdKey, qid)
	ctx.Response.Header.Set("X-Query-Id", qid)

	req, err := parseRequest(ctx)
	if err != nil {
		o.sendQueryError(ctx, qid, req, err)
		return
	}
	instrumentation.IncrementInt64CounterWithLabels(instrumentation.PERCENTILE_QUERY_COUNT, 1,
		attribute.String("method", req.Method.String()))
	log.Infof("qid=%v, ProcessPercentileRequest: dataset=%q percentile=%v method=%v",
		qid, req.Dataset, req.Percentile, req.Method)

	result, err := o.Run(tracing.RequestContext(ctx), req)
	if err != nil {
		o.sendQueryError(ctx, qid, req, err)
		return
	}

	methodAttr := attribute.String("method", result.Method)
	instrumentation.RecordFloat64Histogram(instrumentation.PERCENTILE_QUERY_DURATION,
		result.Duration.Seconds(), methodAttr, attribute.String("dataset", result.Dataset))
	instrumentation.SetQueryLatencyMs(result.Duration.Milliseconds(), "method", result.Method)
	if result.Diagnostics != nil {
		instrumentation.RecordInt64Histogram(instrumentation.PERCENTILE_ITERATIONS,
			int64(result.Diagnostics.Last().Iteration),
			attribute.String("stop_reason", string(result.Diagnostics.StopReason)),
			attribute.Bool("converged", result.Diagnostics.Converged()))
		if !result.Diagnostics.Converged() {
			log.Warnf("qid=%v, ProcessPercentileRequest: iterative search on dataset=%v p=%v stopped with %v",
				qid, result.Dataset, result.Percentile, result.Diagnostics.StopReason)
		}
	}

	if result.Duration > config.GetSlowQueryThreshold() {
		log.Warnf("qid=%v, ProcessPercentileRequest: slow query on dataset=%v method=%v took %v",
			qid, result.Dataset, result.Method, result.Duration)
	}
	log.Infof("qid=%v, ProcessPercentileRequest: dataset=%v p=%v method=%v value=%v took %v",
		qid, result.Dataset, result.Percentile, result.Method, result.Value, result.Duration)

	ctx.SetStatusCode(fasthttp.StatusOK)
	utils.WriteJsonResponse(ctx, result)
}

func (o *Orchestrator) sendQueryError(ctx *fasthttp.RequestCtx, qid string, req Request, err error) {
	status := statusForError(err)
	instrumentation.IncrementInt64CounterWithLabels(instrumentation.PERCENTILE_QUERY_ERRORS, 1,
		attribute.String("method", req.Method.String()),
		attribute.Int("status", status))
	utils.SendErrorWithStatus(ctx, messageForStatus(status),
		fmt.Sprintf("qid=%v, dataset=%q percentile=%v", qid, req.Dataset, req.Percentile), err, status)
}

type DatasetInfo struct {
	Name       string `json:"name"`
	Backend    string `json:"backend"`
	Indexed    bool   `json:"indexed"`
	Count      uint64 `json:"count"`
	CountHuman string `json:"count_human"`
	Error      string `json:"error,omitempty"`
}

type DatasetsReport struct {
	Primary  string        `json:"primary"`
	Datasets []DatasetInfo `json:"datasets"`
}

func backendOf(ds datastore.DataStore) string {
	switch ds.(type) {
	case *datastore.MemStore:
		return "memory"
	case *datastore.SqliteStore:
		return "sqlite"
	default:
		return "unknown"
	}
}

// DescribeDatasets counts every registered dataset. A dataset that cannot be
// counted is reported with its error instead of failing the whole report.
func (o *Orchestrator) DescribeDatasets(ctx context.Context) DatasetsReport {
	report := DatasetsReport{
		Primary:  o.registry.Primary(),
		Datasets: make([]DatasetInfo, 0),
	}
	for _, name := range o.registry.Names() {
		ds, err := o.registry.Get(name)
		if err != nil {
			continue
		}
		info := DatasetInfo{Name: name, Backend: backendOf(ds), Indexed: ds.Indexed()}
		count, err := ds.Count(ctx)
		if err != nil {
			log.Errorf("DescribeDatasets: failed to count dataset %v, err=%v", name, err)
			info.Error = err.Error()
		} else {
			info.Count = count
			info.CountHuman = humanize.Comma(int64(count))
			instrumentation.SetValueCountPerDataset(int64(count), name)
		}
		report.Datasets = append(report.Datasets, info)
	}
	return report
}

// ProcessListDatasetsRequest serves GET /api/datasets.
func (o *Orchestrator) ProcessListDatasetsRequest(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	report := o.DescribeDatasets(tracing.RequestContext(ctx))
	log.Debugf("ProcessListDatasetsRequest: listed %v datasets in %v", len(report.Datasets), time.Since(start))
	ctx.SetStatusCode(fasthttp.StatusOK)
	utils.WriteJsonResponse(ctx, report)
}
