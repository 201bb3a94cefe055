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

package common

type LogConfig struct {
	LogPrefix             string `yaml:"logPrefix"`             // Prefix of log file. Can be a directory. if empty will log to stdout
	LogFileRotationSizeMB int    `yaml:"logFileRotationSizeMB"` //Max size of log file in megabytes
	CompressLogFile       bool   `yaml:"compressLogFile"`
}

type TLSConfig struct {
	Enabled         bool   `yaml:"enabled"`         // enable/disable tls
	CertificatePath string `yaml:"certificatePath"` // path to certificate file
	PrivateKeyPath  string `yaml:"privateKeyPath"`  // path to private key file
}

type TracingConfig struct {
	ServiceName        string  `yaml:"serviceName"`        // service name for tracing
	Endpoint           string  `yaml:"endpoint"`           // endpoint URL for tracing
	SamplingPercentage float64 `yaml:"samplingPercentage"` // sampling percentage for tracing (0-100)
}

// MemoryDatasetConfig describes a dataset that is generated at startup and kept in memory.
type MemoryDatasetConfig struct {
	Name    string `yaml:"name"`
	Func    string `yaml:"func"`  // random or normal
	Count   int    `yaml:"count"` // number of values to generate
	Seed    int64  `yaml:"seed"`
	Indexed bool   `yaml:"indexed"` // keep the values sorted
}

/*  If you add a new config parameters to the Configuration struct below, make sure to add the default value
assignment in the following functions
1) ExtractConfigData function
2) InitializeDefaultConfig function */

// If you add a new config parameters to the Configuration struct below, make sure to add a descriptive info in server.yaml
type Configuration struct {
	QueryListenIP          string                `yaml:"queryListenIP"`          // Listen IP used for query server
	QueryPort              uint64                `yaml:"queryPort"`              // Port used for query server
	MetricsPort            uint64                `yaml:"metricsPort"`            // Port for the prometheus exporter
	DataPath               string                `yaml:"dataPath"`               // directory holding the sqlite file
	DBName                 string                `yaml:"dbName"`                 // sqlite file name, relative to dataPath
	SqliteEnabled          string                `yaml:"sqliteEnabled"`          // serve the sqlite datasets?
	SqliteEnabledConverted bool                  // converted bool value of SqliteEnabled yaml
	PrimaryDataset         string                `yaml:"primaryDataset"`         // dataset used when a request does not name one
	QueryTimeoutSecs       int                   `yaml:"queryTimeoutSecs"`       // per store query timeout, 0 means unbounded
	MaxQueriesPerSecond    float64               `yaml:"maxQueriesPerSecond"`    // percentile requests per second, 0 disables limiting
	SlowQueryThresholdMs   int                   `yaml:"slowQueryThresholdMs"`   // store queries slower than this are logged at warn level
	IngestBatchSize        int                   `yaml:"ingestBatchSize"`        // rows per bulk insert
	Debug                  bool                  `yaml:"debug"`                  // debug logging
	SafeServerStart        bool                  `yaml:"safeMode"`               // if set to true, only a health endpoint is served
	MemoryDatasets         []MemoryDatasetConfig `yaml:"memoryDatasets"`         // in-memory datasets generated at startup
	Log                    LogConfig             `yaml:"log"`                    // Log related config
	TLS                    TLSConfig             `yaml:"tls"`                    // TLS related config
	Tracing                TracingConfig         `yaml:"tracing"`                // Tracing related config
}
