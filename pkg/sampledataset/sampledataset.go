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

package sampledataset

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/siglens/pctlserver/pkg/instrumentation"
	"github.com/siglens/pctlserver/pkg/tracing"
	"github.com/siglens/pctlserver/pkg/utils"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	DEFAULT_BULK_COUNT = 20_000
	MAX_BULK_COUNT     = 10_000_000
	DEFAULT_SEED       = 42
)

// ProgressFunc is called after every batch with the number of values written
// so far to each writer.
type ProgressFunc func(written int, total int)

func LogProgress(written int, total int) {
	log.Infof("LoadDataset: wrote %v of %v values", humanize.Comma(int64(written)), humanize.Comma(int64(total)))
}

// LoadDataset writes count generated values to every writer, batchSize values
// at a time. Each batch goes to all writers concurrently, so writers receive
// identical values.
func LoadDataset(ctx context.Context, writers []datastore.Writer, gen Generator, count int,
	batchSize int, progress ProgressFunc) error {

	if len(writers) == 0 {
		return errors.New("LoadDataset: no datasets to write to")
	}
	if count < 0 {
		return fmt.Errorf("LoadDataset: count must not be negative, got %v", count)
	}
	if batchSize <= 0 {
		batchSize = config.DEFAULT_INGEST_BATCH_SIZE
	}

	written := 0
	for written < count {
		n := batchSize
		if count-written < n {
			n = count - written
		}
		values := gen.Batch(n)

		g, gctx := errgroup.WithContext(ctx)
		for _, w := range writers {
			w := w
			g.Go(func() error {
				if err := w.BulkInsert(gctx, values); err != nil {
					return fmt.Errorf("LoadDataset: dataset %v: %w", w.Name(), err)
				}
				instrumentation.IncrementInt64CounterWithLabels(instrumentation.VALUES_INGESTED, int64(n),
					attribute.String("dataset", w.Name()))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		written += n
		if progress != nil {
			progress(written, count)
		}
	}
	return nil
}

func parseIntArg(args *fasthttp.Args, key string, def int64) (int64, error) {
	raw := args.Peek(key)
	if len(raw) == 0 {
		return def, nil
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

// ProcessSampleDatasetRequest serves POST /api/sampledataset_bulk and fills a
// writable dataset with generated values.
func ProcessSampleDatasetRequest(ctx *fasthttp.RequestCtx, registry *datastore.Registry) {
	args := ctx.QueryArgs()
	name := string(args.Peek("dataset"))

	count, err := parseIntArg(args, "count", DEFAULT_BULK_COUNT)
	if err != nil || count <= 0 || count > MAX_BULK_COUNT {
		utils.SendError(ctx, fmt.Sprintf("count must be an integer in [1, %v]", MAX_BULK_COUNT), "", err)
		return
	}
	seed, err := parseIntArg(args, "seed", DEFAULT_SEED)
	if err != nil {
		utils.SendError(ctx, "seed must be an integer", "", err)
		return
	}
	gen, err := NewGenerator(string(args.Peek("func")), seed)
	if err != nil {
		utils.SendError(ctx, err.Error(), "", err)
		return
	}

	w, err := registry.GetWriter(name)
	if err != nil {
		status := fasthttp.StatusBadRequest
		if errors.Is(err, datastore.ErrUnknownDataset) {
			status = fasthttp.StatusNotFound
		}
		utils.SendErrorWithStatus(ctx, "dataset cannot be loaded", fmt.Sprintf("dataset=%q", name), err, status)
		return
	}

	err = LoadDataset(tracing.RequestContext(ctx), []datastore.Writer{w}, gen, int(count),
		config.GetIngestBatchSize(), nil)
	if err != nil {
		utils.SendInternalError(ctx, "failed to load sample dataset", fmt.Sprintf("dataset=%v", w.Name()), err)
		return
	}

	log.Infof("ProcessSampleDatasetRequest: ingested %v %v values into dataset %v",
		humanize.Comma(count), gen.Name(), w.Name())
	ctx.SetStatusCode(fasthttp.StatusOK)
	utils.WriteResponse(ctx, utils.HttpServerResponse{
		Message:    fmt.Sprintf("Successfully ingested %v values into dataset %v", count, w.Name()),
		StatusCode: fasthttp.StatusOK,
	})
}
