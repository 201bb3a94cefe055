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
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/siglens/pctlserver/pkg/config/common"
	"github.com/siglens/pctlserver/pkg/utils"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"gopkg.in/yaml.v3"
)

const MINUTES_REREAD_CONFIG = 15

const (
	DEFAULT_QUERY_PORT         = 5122
	DEFAULT_METRICS_PORT       = 2222
	DEFAULT_DB_NAME            = "pctl.db"
	DEFAULT_PRIMARY_DATASET    = "value"
	DEFAULT_INGEST_BATCH_SIZE  = 10_000
	DEFAULT_SLOW_QUERY_MS      = 200
	DEFAULT_QUERY_TIMEOUT_SECS = 300
)

var configFileLastModified uint64

var runningConfig common.Configuration
var configLock sync.RWMutex
var configFilePath string
var debugFlag bool // set by -debug

var tracingEnabled bool

func GetRunningConfig() *common.Configuration {
	configLock.RLock()
	defer configLock.RUnlock()
	cfg := runningConfig
	return &cfg
}

func GetQueryListenIP() string {
	return GetRunningConfig().QueryListenIP
}

func GetQueryPort() uint64 {
	return GetRunningConfig().QueryPort
}

func GetMetricsPort() uint64 {
	return GetRunningConfig().MetricsPort
}

func GetDataPath() string {
	return GetRunningConfig().DataPath
}

// Returns the full path of the sqlite file
func GetDBPath() string {
	cfg := GetRunningConfig()
	return filepath.Join(cfg.DataPath, cfg.DBName)
}

func IsSqliteEnabled() bool {
	return GetRunningConfig().SqliteEnabledConverted
}

func GetPrimaryDataset() string {
	return GetRunningConfig().PrimaryDataset
}

func GetQueryTimeout() time.Duration {
	return time.Duration(GetRunningConfig().QueryTimeoutSecs) * time.Second
}

func GetMaxQueriesPerSecond() float64 {
	return GetRunningConfig().MaxQueriesPerSecond
}

func GetSlowQueryThreshold() time.Duration {
	return time.Duration(GetRunningConfig().SlowQueryThresholdMs) * time.Millisecond
}

func GetIngestBatchSize() int {
	return GetRunningConfig().IngestBatchSize
}

func GetMemoryDatasets() []common.MemoryDatasetConfig {
	return GetRunningConfig().MemoryDatasets
}

func GetLogPrefix() string {
	return GetRunningConfig().Log.LogPrefix
}

func IsDebugMode() bool {
	return GetRunningConfig().Debug
}

func SetDebugMode(debug bool) {
	configLock.Lock()
	defer configLock.Unlock()
	runningConfig.Debug = debug
}

func IsSafeMode() bool {
	return GetRunningConfig().SafeServerStart
}

func IsTlsEnabled() bool {
	return GetRunningConfig().TLS.Enabled
}

func GetTLSCertificatePath() string {
	return GetRunningConfig().TLS.CertificatePath
}

func GetTLSPrivateKeyPath() string {
	return GetRunningConfig().TLS.PrivateKeyPath
}

func IsTracingEnabled() bool {
	configLock.RLock()
	defer configLock.RUnlock()
	return tracingEnabled
}

func SetTracingEnabled(enabled bool) {
	configLock.Lock()
	defer configLock.Unlock()
	tracingEnabled = enabled
}

func GetTracingServiceName() string {
	return GetRunningConfig().Tracing.ServiceName
}

func GetTracingEndpoint() string {
	return GetRunningConfig().Tracing.Endpoint
}

func GetTracingSamplingPercentage() float64 {
	return GetRunningConfig().Tracing.SamplingPercentage
}

func GetQueryServerBaseUrl() string {
	scheme := "http"
	if IsTlsEnabled() {
		scheme = "https"
	}
	return fmt.Sprintf("%s://localhost:%d", scheme, GetQueryPort())
}

func ValidateConfig() error {
	cfg := GetRunningConfig()
	if cfg.PrimaryDataset == "" {
		return errors.New("ValidateConfig: primaryDataset cannot be empty")
	}
	seen := make(map[string]struct{})
	for _, mds := range cfg.MemoryDatasets {
		if mds.Name == "" {
			return errors.New("ValidateConfig: memory dataset name cannot be empty")
		}
		if _, ok := seen[mds.Name]; ok {
			return fmt.Errorf("ValidateConfig: duplicate memory dataset %v", mds.Name)
		}
		seen[mds.Name] = struct{}{}
		if mds.Count <= 0 {
			return fmt.Errorf("ValidateConfig: memory dataset %v must have a positive count, got %v", mds.Name, mds.Count)
		}
	}
	if cfg.TLS.Enabled && (cfg.TLS.CertificatePath == "" || cfg.TLS.PrivateKeyPath == "") {
		return errors.New("ValidateConfig: tls is enabled but certificatePath or privateKeyPath is empty")
	}
	return nil
}

func InitConfigurationData() error {
	log.Trace("Initdatastructure.ConfigurationData | START")
	configFilePath = ExtractCmdLineInput() // Function for validate command line INPUT
	log.Trace("Initdatastructure.ConfigurationData | STOP")
	config, err := ReadConfigFile(configFilePath)
	if err != nil {
		return err
	}
	applyConfig(config)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		log.Errorf("InitConfigurationData: Cannot stat config file, err= %v", err)
		return err
	}
	configFileLastModified = uint64(fileInfo.ModTime().UTC().Unix())
	go refreshConfig()
	return nil
}

/*
Use only for testing purpose, DO NOT use externally
*/
func InitializeDefaultConfig() {
	// *************************************
	// THIS IS ONLY USED in TESTS, MAKE SURE:
	// 1. set the defaults ExtractConfigData
	// 2. set the defaults in server.yaml
	// 3. And Here.
	// ************************************
	SetConfig(GetTestConfig())
}

func GetTestConfig() common.Configuration {
	return common.Configuration{
		QueryListenIP:          "0.0.0.0",
		QueryPort:              DEFAULT_QUERY_PORT,
		MetricsPort:            DEFAULT_METRICS_PORT,
		DataPath:               "data/",
		DBName:                 DEFAULT_DB_NAME,
		SqliteEnabled:          "true",
		SqliteEnabledConverted: true,
		PrimaryDataset:         DEFAULT_PRIMARY_DATASET,
		QueryTimeoutSecs:       DEFAULT_QUERY_TIMEOUT_SECS,
		MaxQueriesPerSecond:    0,
		SlowQueryThresholdMs:   DEFAULT_SLOW_QUERY_MS,
		IngestBatchSize:        DEFAULT_INGEST_BATCH_SIZE,
		Debug:                  false,
		SafeServerStart:        false,
		Log:                    common.LogConfig{LogPrefix: "", LogFileRotationSizeMB: 100, CompressLogFile: false},
	}
}

func ReadConfigFile(fileName string) (common.Configuration, error) {
	yamlData, err := os.ReadFile(fileName)
	if err != nil {
		log.Errorf("Cannot read input fileName = %v, err=%v", fileName, err)
		return common.Configuration{}, err
	}
	return ExtractConfigData(yamlData)
}

func ExtractConfigData(yamlData []byte) (common.Configuration, error) {
	var config common.Configuration
	err := yaml.Unmarshal(yamlData, &config)
	if err != nil {
		log.Errorf("Error parsing yaml err=%v", err)
		return config, err
	}

	if len(config.QueryListenIP) <= 0 {
		config.QueryListenIP = "0.0.0.0"
	}
	if config.QueryPort <= 0 {
		config.QueryPort = DEFAULT_QUERY_PORT
	}
	if config.MetricsPort <= 0 {
		config.MetricsPort = DEFAULT_METRICS_PORT
	}
	if len(config.DataPath) <= 0 {
		config.DataPath = "data/"
	}
	if len(config.DBName) <= 0 {
		config.DBName = DEFAULT_DB_NAME
	}

	if len(config.SqliteEnabled) <= 0 {
		config.SqliteEnabled = "true"
	}
	sqliteEnabled, err := strconv.ParseBool(config.SqliteEnabled)
	if err != nil {
		log.Errorf("ExtractConfigData: failed to parse sqlite enabled flag. Defaulting to true. Error: %v", err)
		sqliteEnabled = true
		config.SqliteEnabled = "true"
	}
	config.SqliteEnabledConverted = sqliteEnabled

	if len(config.PrimaryDataset) <= 0 {
		config.PrimaryDataset = DEFAULT_PRIMARY_DATASET
	}
	if config.QueryTimeoutSecs < 0 {
		config.QueryTimeoutSecs = 0
	}
	if config.MaxQueriesPerSecond < 0 {
		config.MaxQueriesPerSecond = 0
	}
	if config.SlowQueryThresholdMs <= 0 {
		config.SlowQueryThresholdMs = DEFAULT_SLOW_QUERY_MS
	}
	if config.IngestBatchSize <= 0 {
		config.IngestBatchSize = DEFAULT_INGEST_BATCH_SIZE
	}

	for i := range config.MemoryDatasets {
		if config.MemoryDatasets[i].Func == "" {
			config.MemoryDatasets[i].Func = "random"
		}
	}

	if len(config.Log.LogPrefix) <= 0 {
		config.Log.LogPrefix = ""
	}
	if config.Log.LogFileRotationSizeMB <= 0 {
		config.Log.LogFileRotationSizeMB = 100
	}

	if config.Tracing.SamplingPercentage < 0 {
		config.Tracing.SamplingPercentage = 0
	} else if config.Tracing.SamplingPercentage > 100 {
		config.Tracing.SamplingPercentage = 100
	}
	if config.Tracing.ServiceName == "" {
		config.Tracing.ServiceName = "pctlserver"
	}

	return config, nil
}

func SetConfig(config common.Configuration) {
	configLock.Lock()
	defer configLock.Unlock()
	runningConfig = config
	tracingEnabled = config.Tracing.Endpoint != "" && config.Tracing.SamplingPercentage > 0
}

// applyConfig installs a config read from file, keeping the -debug override.
func applyConfig(config common.Configuration) {
	SetConfig(config)
	if debugFlag {
		SetDebugMode(true)
	}
}

func ExtractCmdLineInput() string {
	log.Trace("VerifyCommandLineInput | START")
	configFile := flag.String("config", "server.yaml", "Path to config file")
	debug := flag.Bool("debug", false, "Debug logging, regardless of the config file")

	flag.Parse()
	debugFlag = *debug
	log.Info("Extracting config from configFile: ", *configFile)
	log.Trace("VerifyCommandLineInput | STOP")
	return *configFile
}

// WebConfig configuration for fasthttp, copy from fasthttp
type WebConfig struct {
	// Server name for sending in response headers.
	Name string

	// The maximum number of concurrent connections the server may serve.
	Concurrency int

	// Per-connection buffer size for requests' reading.
	// This also limits the maximum header size.
	ReadBufferSize int

	// Maximum number of concurrent client connections allowed per IP.
	MaxConnsPerIP int

	// Maximum number of requests served per connection.
	MaxRequestsPerConn int

	// Maximum request body size.
	MaxRequestBodySize int

	// ReadTimeout is the amount of time allowed to read
	// the full request including body.
	ReadTimeout time.Duration
}

const (
	ServerName         = "pctlserver"
	ReadBufferSize     = 4096
	MaxConnsPerIP      = 3000
	MaxRequestsPerConn = 1000
	MaxRequestBodySize = 4 * 1000 * 1000
	Concurrency        = 3000
)

// DefaultQueryServerHttpConfig  set fasthttp server default configuration
func DefaultQueryServerHttpConfig() WebConfig {
	return WebConfig{
		Name:               fmt.Sprintf("%s-query", ServerName),
		ReadBufferSize:     ReadBufferSize,
		MaxConnsPerIP:      MaxConnsPerIP,
		MaxRequestsPerConn: MaxRequestsPerConn,
		MaxRequestBodySize: MaxRequestBodySize,
		Concurrency:        Concurrency,
	}
}

func ProcessGetConfigAsJson(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	utils.WriteJsonResponse(ctx, GetRunningConfig())
}

func ProcessForceReadConfig(ctx *fasthttp.RequestCtx) {
	newConfig, err := ReadConfigFile(configFilePath)
	if err != nil {
		utils.SendInternalError(ctx, "Failed to re-read config", "", err)
		return
	}
	applyConfig(newConfig)
	ctx.SetStatusCode(fasthttp.StatusOK)
	utils.WriteJsonResponse(ctx, GetRunningConfig())
}

func refreshConfig() {
	for {
		time.Sleep(MINUTES_REREAD_CONFIG * time.Minute)
		fileInfo, err := os.Stat(configFilePath)
		if err != nil {
			log.Errorf("refreshConfig: Cannot stat config file while re-reading, err= %v", err)
			continue
		}
		modifiedTimeSec := uint64(fileInfo.ModTime().UTC().Unix())
		if modifiedTimeSec > configFileLastModified {
			newConfig, err := ReadConfigFile(configFilePath)
			if err != nil {
				log.Errorf("refreshConfig: Cannot read config file while re-reading, err= %v", err)
				continue
			}
			applyConfig(newConfig)
			configFileLastModified = modifiedTimeSec
		}
	}
}
