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

package percentile

import (
	"context"
	"fmt"

	"github.com/siglens/pctlserver/pkg/datastore"
	"go.opentelemetry.io/otel/attribute"
)

// Exact returns the value at rank max(floor(p*n/100)-1, 0) of the ascending
// order. Its cost is whatever ordering the store can offer.
type Exact struct{}

func (Exact) Estimate(ctx context.Context, ds datastore.DataStore, p int) (float64, *Trace, error) {
	if err := ValidatePercentile(p); err != nil {
		return 0, nil, err
	}

	ctx, span := tracer.Start(ctx, "percentile.Exact")
	defer span.End()

	n, err := ds.Count(ctx)
	if err != nil {
		return 0, nil, err
	}
	if n == 0 {
		return 0, nil, fmt.Errorf("Exact.Estimate: dataset %v: %w", ds.Name(), datastore.ErrEmptyDataset)
	}

	offset := ExactOffset(p, n)
	span.SetAttributes(
		attribute.String("dataset", ds.Name()),
		attribute.Int64("count", int64(n)),
		attribute.Int64("offset", int64(offset)),
	)

	value, err := ds.ValueAtRank(ctx, offset)
	if err != nil {
		return 0, nil, err
	}
	return value, nil, nil
}

// ExactOffset is the zero-based rank read by the exact estimator. n must be
// positive. The rank is floor(p*n/100) in integer arithmetic; computing
// (p/100)*n in floating point instead can land one rank lower, e.g. p=29, n=100.
func ExactOffset(p int, n uint64) uint64 {
	rank := uint64(p) * n / 100
	if rank == 0 {
		return 0
	}
	return rank - 1
}
