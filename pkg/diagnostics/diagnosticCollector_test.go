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

package diagnostics

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/siglens/pctlserver/pkg/pctlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestOrchestrator(t *testing.T) *pctlquery.Orchestrator {
	cfg := config.GetTestConfig()
	cfg.DataPath = t.TempDir()
	config.SetConfig(cfg)

	registry := datastore.NewRegistry("value")
	store := datastore.NewMemStore("value", true)
	require.NoError(t, store.BulkInsert(context.Background(), []float64{1, 2, 3}))
	require.NoError(t, registry.Register(store))
	return pctlquery.NewOrchestrator(registry)
}

func readBundle(t *testing.T, bundle []byte) map[string]string {
	reader, err := zip.NewReader(bytes.NewReader(bundle), int64(len(bundle)))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range reader.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = string(data)
	}
	return files
}

func Test_BuildBundle(t *testing.T) {
	orchestrator := newTestOrchestrator(t)

	bundle, err := BuildBundle(context.Background(), orchestrator)
	require.NoError(t, err)

	files := readBundle(t, bundle)
	assert.Len(t, files, 4)
	assert.Contains(t, files["config.json"], `"PrimaryDataset": "value"`)
	assert.Contains(t, files["datasets.json"], `"count": 3`)
	assert.Contains(t, files["datasets.json"], `"backend": "memory"`)
	assert.Contains(t, files, "system-info.json")
	assert.NotEmpty(t, files["node-id.txt"])
}

func Test_CollectDiagnosticsAPI(t *testing.T) {
	orchestrator := newTestOrchestrator(t)

	ctx := &fasthttp.RequestCtx{}
	CollectDiagnosticsAPI(ctx, orchestrator)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/zip", string(ctx.Response.Header.ContentType()))
	assert.Contains(t, string(ctx.Response.Header.Peek("Content-Disposition")), "pctlserver-diagnostics-")

	files := readBundle(t, ctx.Response.Body())
	assert.Contains(t, files, "datasets.json")
}
