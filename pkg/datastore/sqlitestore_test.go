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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSqlite(t *testing.T) *Sqlite {
	db, err := OpenSqlite(filepath.Join(t.TempDir(), "nested", "test.db"), 100*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(db.CloseDb)
	return db
}

func Test_SqliteStores(t *testing.T) {
	db := openTestSqlite(t)
	stores := db.Stores(10 * time.Second)
	require.Len(t, stores, 2)

	assert.Equal(t, VALUE_DATASET, stores[0].Name())
	assert.False(t, stores[0].Indexed())
	assert.Equal(t, INDEXED_VALUE_DATASET, stores[1].Name())
	assert.True(t, stores[1].Indexed())

	for _, s := range stores {
		runStoreChecks(t, s)
	}
}

func Test_SqliteStore_TablesAreSeparate(t *testing.T) {
	db := openTestSqlite(t)
	stores := db.Stores(0)
	ctx := context.Background()

	require.NoError(t, stores[0].BulkInsert(ctx, []float64{1, 2, 3}))
	count, err := stores[1].Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	require.NoError(t, stores[0].Truncate(ctx))
	count, err = stores[0].Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func Test_SqliteStore_LargeBatch(t *testing.T) {
	db := openTestSqlite(t)
	s := db.Stores(0)[1]
	ctx := context.Background()

	values := make([]float64, 2500)
	for i := range values {
		values[i] = float64(len(values) - i)
	}
	require.NoError(t, s.BulkInsert(ctx, values))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), count)

	v, err := s.ValueAtRank(ctx, 1249)
	require.NoError(t, err)
	assert.Equal(t, 1250.0, v)
}
