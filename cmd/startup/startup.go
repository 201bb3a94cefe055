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
	"fmt"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/config/common"
	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/siglens/pctlserver/pkg/instrumentation"
	"github.com/siglens/pctlserver/pkg/localnodeid"
	"github.com/siglens/pctlserver/pkg/pctlquery"
	"github.com/siglens/pctlserver/pkg/sampledataset"
	queryserver "github.com/siglens/pctlserver/pkg/server/query"
	"github.com/siglens/pctlserver/pkg/utils"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var StdOutLogger *log.Logger

var (
	sqliteDb   *datastore.Sqlite
	shutdownMu sync.Mutex
)

func init() {
	StdOutLogger = &log.Logger{
		Out:       os.Stderr,
		Formatter: new(log.TextFormatter),
		Hooks:     make(log.LevelHooks),
		Level:     log.InfoLevel,
	}
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	StdOutLogger.SetFormatter(customFormatter)
}

func InitLogger() {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)
}

// ConfigureLogOutput points logrus at a rotated file under the configured log
// prefix, or stdout when no prefix is set. It returns where logs go.
func ConfigureLogOutput(serverCfg common.Configuration, fileName string) (string, error) {
	if config.IsDebugMode() {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	baseLogDir := serverCfg.Log.LogPrefix
	if baseLogDir == "" {
		log.SetOutput(os.Stdout)
		utils.InitAccessLog("", 0, false)
		return "stdout", nil
	}
	err := os.MkdirAll(baseLogDir, 0764)
	if err != nil {
		return "", fmt.Errorf("ConfigureLogOutput: failed to make log directory at=%v, err=%w", baseLogDir, err)
	}
	logOut := baseLogDir + fileName
	log.SetOutput(&lumberjack.Logger{
		Filename:   logOut,
		MaxSize:    serverCfg.Log.LogFileRotationSizeMB,
		MaxBackups: 30,
		MaxAge:     1, //days
		Compress:   serverCfg.Log.CompressLogFile,
	})
	utils.InitAccessLog(baseLogDir+"access.log", serverCfg.Log.LogFileRotationSizeMB, serverCfg.Log.CompressLogFile)
	return logOut, nil
}

// OpenSqlite opens the configured sqlite file. The handle is closed by
// ShutdownPctlServer.
func OpenSqlite() (*datastore.Sqlite, error) {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if sqliteDb != nil {
		return sqliteDb, nil
	}
	db, err := datastore.OpenSqlite(config.GetDBPath(), config.GetSlowQueryThreshold())
	if err != nil {
		return nil, err
	}
	sqliteDb = db
	return db, nil
}

// BuildRegistry registers the sqlite datasets, when enabled, and generates the
// configured in-memory datasets.
func BuildRegistry(ctx context.Context) (*datastore.Registry, error) {
	registry := datastore.NewRegistry(config.GetPrimaryDataset())

	if config.IsSqliteEnabled() {
		db, err := OpenSqlite()
		if err != nil {
			log.Errorf("BuildRegistry: failed to open sqlite at %v, err=%v", config.GetDBPath(), err)
			return nil, err
		}
		for _, store := range db.Stores(config.GetQueryTimeout()) {
			if err := registry.Register(store); err != nil {
				return nil, err
			}
		}
	}

	for _, mcfg := range config.GetMemoryDatasets() {
		store, err := buildMemoryDataset(ctx, mcfg)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(store); err != nil {
			return nil, err
		}
	}

	if _, err := registry.Get(""); err != nil {
		return nil, fmt.Errorf("BuildRegistry: primary dataset %q is not configured: %w", config.GetPrimaryDataset(), err)
	}
	return registry, nil
}

func buildMemoryDataset(ctx context.Context, mcfg common.MemoryDatasetConfig) (*datastore.MemStore, error) {
	gen, err := sampledataset.NewGenerator(mcfg.Func, mcfg.Seed)
	if err != nil {
		return nil, err
	}
	store := datastore.NewMemStore(mcfg.Name, mcfg.Indexed)
	err = sampledataset.LoadDataset(ctx, []datastore.Writer{store}, gen, mcfg.Count, config.GetIngestBatchSize(), nil)
	if err != nil {
		return nil, err
	}
	log.Infof("buildMemoryDataset: generated %v %v values for dataset %v (indexed=%v)",
		humanize.Comma(int64(mcfg.Count)), gen.Name(), mcfg.Name, mcfg.Indexed)
	return store, nil
}

func StartPctlServer() error {
	nodeId := localnodeid.GetRunningNodeID()
	if localnodeid.IsInitServer() {
		log.Infof("StartPctlServer: initialized new node id %v", nodeId)
	} else {
		log.Infof("StartPctlServer: running with node id %v", nodeId)
	}

	registry, err := BuildRegistry(context.Background())
	if err != nil {
		return err
	}

	err = instrumentation.InitMetrics(config.GetMetricsPort())
	if err != nil {
		log.Errorf("StartPctlServer: failed to init metrics, err=%v", err)
		return err
	}

	queryServer := fmt.Sprintf("%v:%d", config.GetQueryListenIP(), config.GetQueryPort())
	startQueryServer(queryServer, pctlquery.NewOrchestrator(registry))
	return nil
}

func ShutdownPctlServer() {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if sqliteDb != nil {
		sqliteDb.CloseDb()
		sqliteDb = nil
	}
}

func startQueryServer(serverAddr string, orchestrator *pctlquery.Orchestrator) {
	startupLog := fmt.Sprintf("----- Percentile Query server starting on %s ----- \n", serverAddr)
	if config.GetLogPrefix() != "" {
		StdOutLogger.Infof(startupLog)
	}
	log.Infof(startupLog)
	cfg := config.DefaultQueryServerHttpConfig()
	s := queryserver.ConstructQueryServer(cfg, serverAddr, orchestrator)
	if config.IsSafeMode() {
		go func() {
			err := s.RunSafeServer()
			if err != nil {
				log.Errorf("Failed to start mock server! Error: %v", err)
				return
			}
		}()
	} else {
		go func() {
			err := s.Run()
			if err != nil {
				log.Errorf("Failed to start server! Error: %v", err)
			}
		}()
	}
}
