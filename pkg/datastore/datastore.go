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

// Package datastore holds the read-only query surface the percentile
// estimators run against, and the stores that implement it.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/siglens/pctlserver/pkg/utils"
)

const (
	EMPTY_DATASET         = "EMPTY_DATASET"
	DATASTORE_UNAVAILABLE = "DATASTORE_UNAVAILABLE"
	UNKNOWN_DATASET       = "UNKNOWN_DATASET"
	RANK_OUT_OF_RANGE     = "RANK_OUT_OF_RANGE"
	INVALID_VALUE         = "INVALID_VALUE"
	READ_ONLY_DATASET     = "READ_ONLY_DATASET"
)

var (
	ErrEmptyDataset         = utils.NewErrorWithCode(EMPTY_DATASET, errors.New("dataset is empty"))
	ErrDataStoreUnavailable = utils.NewErrorWithCode(DATASTORE_UNAVAILABLE, errors.New("datastore unavailable"))
	ErrUnknownDataset       = utils.NewErrorWithCode(UNKNOWN_DATASET, errors.New("unknown dataset"))
	ErrRankOutOfRange       = utils.NewErrorWithCode(RANK_OUT_OF_RANGE, errors.New("rank out of range"))
	ErrInvalidValue         = utils.NewErrorWithCode(INVALID_VALUE, errors.New("value must be a finite number"))
	ErrReadOnlyDataset      = utils.NewErrorWithCode(READ_ONLY_DATASET, errors.New("dataset does not accept writes"))
)

// DataStore is a read-only view over a named numeric dataset.
// Implementations must be safe for concurrent readers.
type DataStore interface {
	Name() string
	// Indexed reports whether ValueAtRank is backed by an ordering index.
	Indexed() bool
	Count(ctx context.Context) (uint64, error)
	// CountAbove returns the number of values strictly greater than threshold.
	CountAbove(ctx context.Context, threshold float64) (uint64, error)
	Min(ctx context.Context) (float64, error)
	Max(ctx context.Context) (float64, error)
	// ValueAtRank returns the value at the zero-based position offset of the
	// ascending order.
	ValueAtRank(ctx context.Context, offset uint64) (float64, error)
}

// Summary is the result of a single aggregate pass over a dataset.
type Summary struct {
	Count      uint64
	Min        float64
	Max        float64
	CountAbove uint64
}

// Summarizer is implemented by stores that can return count, extrema and
// count-above in one query.
type Summarizer interface {
	Summarize(ctx context.Context, threshold float64) (Summary, error)
}

// Writer is implemented by stores that accept bulk inserts.
type Writer interface {
	Name() string
	BulkInsert(ctx context.Context, values []float64) error
}

// Summarize uses the store's Summarizer when available and falls back to
// individual queries otherwise.
func Summarize(ctx context.Context, ds DataStore, threshold float64) (Summary, error) {
	if s, ok := ds.(Summarizer); ok {
		return s.Summarize(ctx, threshold)
	}

	var sum Summary
	var err error
	sum.Count, err = ds.Count(ctx)
	if err != nil {
		return Summary{}, err
	}
	if sum.Count == 0 {
		return Summary{}, fmt.Errorf("Summarize: dataset %v: %w", ds.Name(), ErrEmptyDataset)
	}
	sum.Min, err = ds.Min(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum.Max, err = ds.Max(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum.CountAbove, err = ds.CountAbove(ctx, threshold)
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func unavailable(op string, name string, err error) error {
	return fmt.Errorf("%w: %v on dataset %v: %w", ErrDataStoreUnavailable, op, name, err)
}

func validateValues(values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("validateValues: value at position %v is %v: %w", i, v, ErrInvalidValue)
		}
	}
	return nil
}
