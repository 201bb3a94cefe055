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

// Package percentile estimates percentiles of a datastore.DataStore, either by
// an order-statistic lookup or by iterating on counting queries only.
package percentile

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/siglens/pctlserver/pkg/utils"
	"go.opentelemetry.io/otel"
)

const (
	INVALID_PERCENTILE  = "INVALID_PERCENTILE"
	NON_FINITE_ESTIMATE = "NON_FINITE_ESTIMATE"
)

var ErrInvalidPercentile = utils.NewErrorWithCode(INVALID_PERCENTILE, errors.New("percentile must be an integer in [0, 100]"))
var ErrNonFiniteEstimate = utils.NewErrorWithCode(NON_FINITE_ESTIMATE, errors.New("estimate is not a finite number"))

var tracer = otel.Tracer("github.com/siglens/pctlserver/pkg/percentile")

// Estimator computes the p-th percentile of a dataset. The returned trace is
// nil for estimators that produce no diagnostics.
type Estimator interface {
	Estimate(ctx context.Context, ds datastore.DataStore, p int) (float64, *Trace, error)
}

func ValidatePercentile(p int) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("ValidatePercentile: got %v: %w", p, ErrInvalidPercentile)
	}
	return nil
}

func CheckFinite(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("CheckFinite: got %v: %w", value, ErrNonFiniteEstimate)
	}
	return nil
}
