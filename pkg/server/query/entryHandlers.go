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

package queryserver

import (
	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/datastore"
	"github.com/siglens/pctlserver/pkg/diagnostics"
	"github.com/siglens/pctlserver/pkg/health"
	"github.com/siglens/pctlserver/pkg/pctlquery"
	"github.com/siglens/pctlserver/pkg/sampledataset"
	systemconfig "github.com/siglens/pctlserver/pkg/systemConfig"
	"github.com/valyala/fasthttp"
)

func getHealthHandler() func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		health.ProcessGetHealth(ctx)
	}
}

func getSafeHealthHandler() func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		health.ProcessSafeHealth(ctx)
	}
}

func percentileHandler(o *pctlquery.Orchestrator) func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		o.ProcessPercentileRequest(ctx)
	}
}

func listDatasetsHandler(o *pctlquery.Orchestrator) func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		o.ProcessListDatasetsRequest(ctx)
	}
}

func sampleDatasetBulkHandler(registry *datastore.Registry) func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		sampledataset.ProcessSampleDatasetRequest(ctx, registry)
	}
}

func getConfigHandler() func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		config.ProcessGetConfigAsJson(ctx)
	}
}

func getConfigReloadHandler() func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		config.ProcessForceReadConfig(ctx)
	}
}

func getSystemInfoHandler() func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		systemconfig.GetSystemInfo(ctx)
	}
}

func diagnosticsHandler(o *pctlquery.Orchestrator) func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		diagnostics.CollectDiagnosticsAPI(ctx, o)
	}
}
