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

package startup

import (
	"context"
	"errors"
	"testing"

	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/config/common"
	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildRegistry(t *testing.T) {
	cfg := config.GetTestConfig()
	cfg.DataPath = t.TempDir() + "/"
	cfg.PrimaryDataset = "uniform"
	cfg.MemoryDatasets = []common.MemoryDatasetConfig{
		{Name: "uniform", Func: "random", Count: 2_000, Seed: 42, Indexed: true},
		{Name: "bell", Func: "normal", Count: 500, Seed: 7},
	}
	config.SetConfig(cfg)
	defer ShutdownPctlServer()

	registry, err := BuildRegistry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bell", datastore.INDEXED_VALUE_DATASET, "uniform", datastore.VALUE_DATASET}, registry.Names())

	ds, err := registry.Get("")
	require.NoError(t, err)
	assert.Equal(t, "uniform", ds.Name())
	n, err := ds.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000), n)

	sqliteStore, err := registry.Get(datastore.VALUE_DATASET)
	require.NoError(t, err)
	n, err = sqliteStore.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func Test_BuildRegistry_MissingPrimary(t *testing.T) {
	cfg := config.GetTestConfig()
	cfg.SqliteEnabledConverted = false
	cfg.PrimaryDataset = "nothing"
	cfg.MemoryDatasets = []common.MemoryDatasetConfig{
		{Name: "small", Func: "random", Count: 10, Seed: 1},
	}
	config.SetConfig(cfg)

	_, err := BuildRegistry(context.Background())
	assert.True(t, errors.Is(err, datastore.ErrUnknownDataset))
}

func Test_BuildRegistry_BadGenerator(t *testing.T) {
	cfg := config.GetTestConfig()
	cfg.SqliteEnabledConverted = false
	cfg.PrimaryDataset = "small"
	cfg.MemoryDatasets = []common.MemoryDatasetConfig{
		{Name: "small", Func: "zipf", Count: 10, Seed: 1},
	}
	config.SetConfig(cfg)

	_, err := BuildRegistry(context.Background())
	assert.Error(t, err)
}
