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

package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/siglens/pctlserver/pkg/sampledataset"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type loadOptions struct {
	configFile   string
	count        int
	value        bool
	indexedValue bool
	funcName     string
	seed         int64
	batchSize    int
	truncate     bool
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "write generated values into the sqlite datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := loadOptions{}
		opts.configFile, _ = cmd.Flags().GetString("config")
		opts.count, _ = cmd.Flags().GetInt("count")
		opts.value, _ = cmd.Flags().GetBool("value")
		opts.indexedValue, _ = cmd.Flags().GetBool("indexed_value")
		opts.funcName, _ = cmd.Flags().GetString("func")
		opts.seed, _ = cmd.Flags().GetInt64("seed")
		opts.batchSize, _ = cmd.Flags().GetInt("batchSize")
		opts.truncate, _ = cmd.Flags().GetBool("truncate")

		log.Infof("count : %+v", opts.count)
		log.Infof("func : %+v, seed : %+v", opts.funcName, opts.seed)
		log.Infof("batchSize : %+v", opts.batchSize)

		return runLoad(cmd.Context(), opts)
	},
}

func loadConfig(configFile string) error {
	if configFile == "" {
		config.InitializeDefaultConfig()
		return nil
	}
	cfg, err := config.ReadConfigFile(configFile)
	if err != nil {
		return err
	}
	config.SetConfig(cfg)
	return nil
}

// selectWriters keeps the stores named by the flags; with neither flag set
// both tables are loaded.
func selectWriters(stores []*datastore.SqliteStore, value bool, indexedValue bool) []*datastore.SqliteStore {
	if !value && !indexedValue {
		return stores
	}
	selected := make([]*datastore.SqliteStore, 0, len(stores))
	for _, s := range stores {
		if (s.Name() == datastore.VALUE_DATASET && value) || (s.Name() == datastore.INDEXED_VALUE_DATASET && indexedValue) {
			selected = append(selected, s)
		}
	}
	return selected
}

func runLoad(ctx context.Context, opts loadOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.count <= 0 {
		return errors.New("runLoad: --count must be positive")
	}
	if err := loadConfig(opts.configFile); err != nil {
		return err
	}
	gen, err := sampledataset.NewGenerator(opts.funcName, opts.seed)
	if err != nil {
		return err
	}

	db, err := datastore.OpenSqlite(config.GetDBPath(), config.GetSlowQueryThreshold())
	if err != nil {
		return err
	}
	defer db.CloseDb()

	stores := selectWriters(db.Stores(0), opts.value, opts.indexedValue)
	writers := make([]datastore.Writer, 0, len(stores))
	for _, s := range stores {
		if opts.truncate {
			if err := s.Truncate(ctx); err != nil {
				return err
			}
			log.Infof("runLoad: truncated dataset %v", s.Name())
		}
		writers = append(writers, s)
	}

	start := time.Now()
	err = sampledataset.LoadDataset(ctx, writers, gen, opts.count, opts.batchSize, sampledataset.LogProgress)
	if err != nil {
		return err
	}
	log.Infof("runLoad: wrote %v %v values into each of %v datasets at %v in %v",
		humanize.Comma(int64(opts.count)), gen.Name(), len(writers), config.GetDBPath(), time.Since(start))
	return nil
}

func init() {
	loadCmd.Flags().StringP("config", "c", "", "server config file; the sqlite file location is read from it")
	loadCmd.Flags().IntP("count", "n", 1_000_000, "number of values to write to each dataset")
	loadCmd.Flags().Bool("value", false, "load the value dataset")
	loadCmd.Flags().Bool("indexed_value", false, "load the indexed_value dataset")
	loadCmd.Flags().StringP("func", "f", sampledataset.FUNC_RANDOM, "value distribution. Options=[random,normal]")
	loadCmd.Flags().Int64P("seed", "s", sampledataset.DEFAULT_SEED, "generator seed")
	loadCmd.Flags().IntP("batchSize", "b", config.DEFAULT_INGEST_BATCH_SIZE, "values per insert batch")
	loadCmd.Flags().Bool("truncate", false, "delete existing values before loading")
}
