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

package datastore

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/siglens/pctlserver/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStore interface {
	DataStore
	Writer
	Summarizer
}

// runStoreChecks exercises a store that starts out empty.
func runStoreChecks(t *testing.T, ds testStore) {
	ctx := context.Background()

	count, err := ds.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	_, err = ds.Min(ctx)
	assert.True(t, errors.Is(err, ErrEmptyDataset))
	_, err = ds.Max(ctx)
	assert.True(t, errors.Is(err, ErrEmptyDataset))
	_, err = ds.Summarize(ctx, 0)
	assert.True(t, errors.Is(err, ErrEmptyDataset))
	assert.Equal(t, EMPTY_DATASET, utils.GetErrorCode(err))
	_, err = ds.ValueAtRank(ctx, 0)
	assert.True(t, errors.Is(err, ErrRankOutOfRange))

	require.NoError(t, ds.BulkInsert(ctx, []float64{5, 1, 4}))
	require.NoError(t, ds.BulkInsert(ctx, []float64{2, 3, 3}))

	count, err = ds.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), count)

	minVal, err := ds.Min(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, minVal)
	maxVal, err := ds.Max(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, maxVal)

	above, err := ds.CountAbove(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), above, "strictly greater than the threshold")
	above, err = ds.CountAbove(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), above)
	above, err = ds.CountAbove(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), above)

	expected := []float64{1, 2, 3, 3, 4, 5}
	for i, want := range expected {
		got, err := ds.ValueAtRank(ctx, uint64(i))
		require.NoError(t, err)
		assert.Equal(t, want, got, "rank %d", i)
	}
	_, err = ds.ValueAtRank(ctx, 6)
	assert.True(t, errors.Is(err, ErrRankOutOfRange))

	sum, err := ds.Summarize(ctx, 2.5)
	require.NoError(t, err)
	assert.Equal(t, Summary{Count: 6, Min: 1, Max: 5, CountAbove: 4}, sum)

	err = ds.BulkInsert(ctx, []float64{1, math.NaN()})
	assert.True(t, errors.Is(err, ErrInvalidValue))
	count, err = ds.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), count, "rejected batch must not be written")
}

func Test_MemStore(t *testing.T) {
	runStoreChecks(t, NewMemStore("plain", false))
	runStoreChecks(t, NewMemStore("sorted", true))
}

func Test_MemStore_CancelledContext(t *testing.T) {
	ms := NewMemStore("plain", false)
	require.NoError(t, ms.BulkInsert(context.Background(), []float64{1, 2}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ms.Count(ctx)
	assert.True(t, errors.Is(err, ErrDataStoreUnavailable))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, DATASTORE_UNAVAILABLE, utils.GetErrorCode(err))
}

func Test_MemStore_Truncate(t *testing.T) {
	ms := NewMemStore("sorted", true)
	require.NoError(t, ms.BulkInsert(context.Background(), []float64{3, 1}))
	ms.Truncate()
	count, err := ms.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func Test_Summarize_Fallback(t *testing.T) {
	ms := NewMemStore("plain", false)
	ctx := context.Background()

	_, err := Summarize(ctx, countOnly{ms}, 0)
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	require.NoError(t, ms.BulkInsert(ctx, []float64{-1, 0, 1, 2}))
	sum, err := Summarize(ctx, countOnly{ms}, 0)
	require.NoError(t, err)
	assert.Equal(t, Summary{Count: 4, Min: -1, Max: 2, CountAbove: 2}, sum)
}

// countOnly hides the Summarizer of the wrapped store.
type countOnly struct {
	ds DataStore
}

func (c countOnly) Name() string  { return c.ds.Name() }
func (c countOnly) Indexed() bool { return c.ds.Indexed() }
func (c countOnly) Count(ctx context.Context) (uint64, error) {
	return c.ds.Count(ctx)
}
func (c countOnly) CountAbove(ctx context.Context, threshold float64) (uint64, error) {
	return c.ds.CountAbove(ctx, threshold)
}
func (c countOnly) Min(ctx context.Context) (float64, error) { return c.ds.Min(ctx) }
func (c countOnly) Max(ctx context.Context) (float64, error) { return c.ds.Max(ctx) }
func (c countOnly) ValueAtRank(ctx context.Context, offset uint64) (float64, error) {
	return c.ds.ValueAtRank(ctx, offset)
}
