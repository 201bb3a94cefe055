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

// Package pctlquery resolves a percentile request to a dataset and an
// estimator, runs it, and shapes the result for the query endpoint.
package pctlquery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/siglens/pctlserver/pkg/percentile"
	"github.com/siglens/pctlserver/pkg/utils"
)

const UNKNOWN_METHOD = "UNKNOWN_METHOD"

var ErrUnknownMethod = utils.NewErrorWithCode(UNKNOWN_METHOD, errors.New("method must be exact or iterative"))

type Method int

const (
	MethodExact Method = iota + 1
	MethodIterative
)

func (m Method) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodIterative:
		return "iterative"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod accepts the method names and their numeric ids, 1 for exact
// and 2 for iterative.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact", "1":
		return MethodExact, nil
	case "iterative", "2":
		return MethodIterative, nil
	default:
		return 0, fmt.Errorf("ParseMethod: got %q: %w", s, ErrUnknownMethod)
	}
}

type Request struct {
	Dataset    string
	Percentile int
	Method     Method
}

type Result struct {
	Method          string            `json:"method"`
	Dataset         string            `json:"dataset"`
	Percentile      int               `json:"percentile"`
	Value           float64           `json:"value"`
	Duration        time.Duration     `json:"-"`
	DurationSeconds float64           `json:"duration_seconds"`
	Diagnostics     *percentile.Trace `json:"debug_info"`
}

// Orchestrator is stateless per request and safe for concurrent use.
type Orchestrator struct {
	registry   *datastore.Registry
	estimators map[Method]percentile.Estimator
}

func NewOrchestrator(registry *datastore.Registry) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		estimators: map[Method]percentile.Estimator{
			MethodExact:     percentile.Exact{},
			MethodIterative: percentile.Iterative{},
		},
	}
}

func (o *Orchestrator) Registry() *datastore.Registry {
	return o.registry
}

func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := percentile.ValidatePercentile(req.Percentile); err != nil {
		return nil, err
	}
	estimator, ok := o.estimators[req.Method]
	if !ok {
		return nil, fmt.Errorf("Orchestrator.Run: method %v: %w", req.Method, ErrUnknownMethod)
	}
	ds, err := o.registry.Get(req.Dataset)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	value, trace, err := estimator.Estimate(ctx, ds, req.Percentile)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}
	if err := percentile.CheckFinite(value); err != nil {
		return nil, fmt.Errorf("Orchestrator.Run: dataset %v p=%v method=%v: %w", ds.Name(), req.Percentile, req.Method, err)
	}

	return &Result{
		Method:          req.Method.String(),
		Dataset:         ds.Name(),
		Percentile:      req.Percentile,
		Value:           value,
		Duration:        elapsed,
		DurationSeconds: utils.ToFixedSeconds(elapsed),
		Diagnostics:     trace,
	}, nil
}
