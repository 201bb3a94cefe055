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

package health

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/siglens/pctlserver/pkg/utils"
	"github.com/valyala/fasthttp"
)

type healthResponse struct {
	utils.HttpServerResponse
	StartedAt     string  `json:"started_at,omitempty"`
	Uptime        string  `json:"uptime,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func ProcessGetHealth(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	utils.WriteJsonResponse(ctx, newHealthResponse("", time.Now()))
}

func ProcessSafeHealth(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	utils.WriteJsonResponse(ctx, newHealthResponse("Server started up in safe mode", time.Now()))
}

func newHealthResponse(msg string, now time.Time) healthResponse {
	resp := healthResponse{
		HttpServerResponse: utils.HttpServerResponse{
			Message:    msg,
			StatusCode: fasthttp.StatusOK,
		},
	}
	started := utils.GetServerStartTime()
	if started.IsZero() {
		return resp
	}
	resp.StartedAt = started.UTC().Format(time.RFC3339)
	resp.Uptime = strings.TrimSpace(humanize.RelTime(started, now, "", ""))
	resp.UptimeSeconds = now.Sub(started).Truncate(time.Second).Seconds()
	return resp
}
