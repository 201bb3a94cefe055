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

package config

import (
	"testing"
	"time"

	"github.com/siglens/pctlserver/pkg/config/common"
	"github.com/stretchr/testify/assert"
)

func Test_ExtractConfigData(t *testing.T) {
	cases := []struct {
		input    []byte
		expected common.Configuration
	}{
		{ // case 1 - For correct input parameters and values
			[]byte(`
 queryListenIP: "127.0.0.1"
 queryPort: 9090
 metricsPort: 3333
 dataPath: "/tmp/pctl/"
 dbName: "values.db"
 sqliteEnabled: true
 primaryDataset: "indexed_value"
 queryTimeoutSecs: 30
 maxQueriesPerSecond: 12.5
 slowQueryThresholdMs: 50
 ingestBatchSize: 500
 debug: true
 memoryDatasets:
   - name: "uniform"
     func: "random"
     count: 1000
     seed: 42
     indexed: true
   - name: "gauss"
     count: 10
     seed: 7
 tracing:
   endpoint: "http://localhost:4317"
   serviceName: "pctl"
   samplingPercentage: 100
 log:
   logPrefix: "./logs/"
 `),

			common.Configuration{
				QueryListenIP:          "127.0.0.1",
				QueryPort:              9090,
				MetricsPort:            3333,
				DataPath:               "/tmp/pctl/",
				DBName:                 "values.db",
				SqliteEnabled:          "true",
				SqliteEnabledConverted: true,
				PrimaryDataset:         "indexed_value",
				QueryTimeoutSecs:       30,
				MaxQueriesPerSecond:    12.5,
				SlowQueryThresholdMs:   50,
				IngestBatchSize:        500,
				Debug:                  true,
				MemoryDatasets: []common.MemoryDatasetConfig{
					{Name: "uniform", Func: "random", Count: 1000, Seed: 42, Indexed: true},
					{Name: "gauss", Func: "random", Count: 10, Seed: 7, Indexed: false},
				},
				Log:     common.LogConfig{LogPrefix: "./logs/", LogFileRotationSizeMB: 100, CompressLogFile: false},
				Tracing: common.TracingConfig{Endpoint: "http://localhost:4317", ServiceName: "pctl", SamplingPercentage: 100},
			},
		},
		{ // case 2 - Defaults and a bad bool
			[]byte(`
 sqliteEnabled: "not a bool"
 maxQueriesPerSecond: -4
 queryTimeoutSecs: -1
 tracing:
   samplingPercentage: 250
 `),
			common.Configuration{
				QueryListenIP:          "0.0.0.0",
				QueryPort:              DEFAULT_QUERY_PORT,
				MetricsPort:            DEFAULT_METRICS_PORT,
				DataPath:               "data/",
				DBName:                 DEFAULT_DB_NAME,
				SqliteEnabled:          "true",
				SqliteEnabledConverted: true,
				PrimaryDataset:         DEFAULT_PRIMARY_DATASET,
				QueryTimeoutSecs:       0,
				MaxQueriesPerSecond:    0,
				SlowQueryThresholdMs:   DEFAULT_SLOW_QUERY_MS,
				IngestBatchSize:        DEFAULT_INGEST_BATCH_SIZE,
				Log:                    common.LogConfig{LogFileRotationSizeMB: 100},
				Tracing:                common.TracingConfig{ServiceName: "pctlserver", SamplingPercentage: 100},
			},
		},
	}
	for i, test := range cases {
		actualConfig, err := ExtractConfigData(test.input)
		assert.NoError(t, err, "case %d", i+1)
		assert.Equal(t, test.expected, actualConfig, "case %d", i+1)
	}
}

func Test_ExtractConfigData_BadYaml(t *testing.T) {
	_, err := ExtractConfigData([]byte("queryPort: [not, a, port]"))
	assert.Error(t, err)
}

func Test_SetConfig_Getters(t *testing.T) {
	cfg := GetTestConfig()
	cfg.DataPath = "/var/lib/pctl"
	cfg.QueryTimeoutSecs = 3
	cfg.SlowQueryThresholdMs = 25
	cfg.Tracing = common.TracingConfig{Endpoint: "http://collector:4318", SamplingPercentage: 10}
	SetConfig(cfg)
	defer InitializeDefaultConfig()

	assert.Equal(t, "/var/lib/pctl/pctl.db", GetDBPath())
	assert.Equal(t, 3*time.Second, GetQueryTimeout())
	assert.Equal(t, 25*time.Millisecond, GetSlowQueryThreshold())
	assert.True(t, IsTracingEnabled())
	assert.Equal(t, "http://localhost:5122", GetQueryServerBaseUrl())

	cfg.Tracing.SamplingPercentage = 0
	SetConfig(cfg)
	assert.False(t, IsTracingEnabled())
}

func Test_ApplyConfig_DebugOverride(t *testing.T) {
	defer InitializeDefaultConfig()
	cfg := GetTestConfig()
	cfg.Debug = false

	applyConfig(cfg)
	assert.False(t, IsDebugMode())

	debugFlag = true
	defer func() { debugFlag = false }()
	applyConfig(cfg)
	assert.True(t, IsDebugMode())
	assert.False(t, cfg.Debug)
}

func Test_ValidateConfig(t *testing.T) {
	defer InitializeDefaultConfig()

	cfg := GetTestConfig()
	SetConfig(cfg)
	assert.NoError(t, ValidateConfig())

	cfg.MemoryDatasets = []common.MemoryDatasetConfig{{Name: "a", Count: 1}, {Name: "a", Count: 2}}
	SetConfig(cfg)
	assert.Error(t, ValidateConfig())

	cfg.MemoryDatasets = []common.MemoryDatasetConfig{{Name: "a", Count: 0}}
	SetConfig(cfg)
	assert.Error(t, ValidateConfig())

	cfg.MemoryDatasets = nil
	cfg.TLS = common.TLSConfig{Enabled: true}
	SetConfig(cfg)
	assert.Error(t, ValidateConfig())
}
