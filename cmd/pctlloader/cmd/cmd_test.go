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
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/siglens/pctlserver/pkg/percentile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func Test_BuildQueryURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5122/api/percentile?percentile=90&method=iterative",
		buildQueryURL("http://localhost:5122/", "", 90, "iterative"))
	assert.Equal(t, "http://h/api/percentile?percentile=5&method=exact&dataset=indexed_value",
		buildQueryURL("http://h", "indexed_value", 5, "exact"))
	assert.Equal(t, "http://h/api/percentile?percentile=-5&method=exact",
		buildQueryURL("http://h", "", -5, "exact"))
}

func Test_RunQuery(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	defer ln.Close()
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			if string(ctx.QueryArgs().Peek("method")) == "tdigest" {
				ctx.SetStatusCode(fasthttp.StatusBadRequest)
				ctx.SetBodyString(`{"error":"invalid percentile request","code":"UNKNOWN_METHOD"}`)
				return
			}
			ctx.SetBodyString(`{"method":"iterative","dataset":"value","percentile":90,"value":0.9,` +
				`"duration_seconds":0.01,"debug_info":{"iterations":[{"iteration":0,"guess":0,"estimated_percentile":0}],"stop_reason":"plateau"}}`)
		})
	}()
	client := &fasthttp.Client{Dial: func(addr string) (net.Conn, error) { return ln.Dial() }}

	result, err := runQuery(client, "http://pctl", "", 90, "iterative")
	require.NoError(t, err)
	assert.Equal(t, 0.9, result.Value)
	require.NotNil(t, result.Diagnostics)
	assert.Equal(t, "plateau", string(result.Diagnostics.StopReason))

	_, err = runQuery(client, "http://pctl", "", 50, "tdigest")
	assert.ErrorContains(t, err, "UNKNOWN_METHOD")

	for _, p := range []int{-5, 101} {
		_, err = runQuery(client, "http://pctl", "", p, "exact")
		assert.ErrorIs(t, err, percentile.ErrInvalidPercentile, "p=%v", p)
	}
}

func Test_RunLoad(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("dataPath: "+dir+"/\ndbName: test.db\n"), 0600))

	opts := loadOptions{
		configFile:   configFile,
		count:        2_500,
		indexedValue: true,
		funcName:     "normal",
		seed:         42,
		batchSize:    1_000,
	}
	require.NoError(t, runLoad(context.Background(), opts))

	db, err := datastore.OpenSqlite(filepath.Join(dir, "test.db"), 0)
	require.NoError(t, err)
	defer db.CloseDb()
	for _, s := range db.Stores(0) {
		n, err := s.Count(context.Background())
		require.NoError(t, err)
		if s.Name() == datastore.INDEXED_VALUE_DATASET {
			assert.Equal(t, uint64(2_500), n)
		} else {
			assert.Equal(t, uint64(0), n)
		}
	}

	opts.truncate = true
	opts.count = 10
	require.NoError(t, runLoad(context.Background(), opts))

	assert.Error(t, runLoad(context.Background(), loadOptions{count: 0}))
}

func Test_SelectWriters(t *testing.T) {
	db, err := datastore.OpenSqlite(filepath.Join(t.TempDir(), "sel.db"), 0)
	require.NoError(t, err)
	defer db.CloseDb()
	stores := db.Stores(0)

	assert.Len(t, selectWriters(stores, false, false), 2)
	only := selectWriters(stores, true, false)
	require.Len(t, only, 1)
	assert.Equal(t, datastore.VALUE_DATASET, only[0].Name())
}
