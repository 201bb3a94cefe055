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
	"testing"
	"time"

	"github.com/siglens/pctlserver/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func Test_NewHealthResponse(t *testing.T) {
	utils.SetServerStartTime(time.Time{})
	resp := newHealthResponse("", time.Now())
	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Uptime)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	utils.SetServerStartTime(start)
	resp = newHealthResponse("Server started up in safe mode", start.Add(90*time.Minute))
	assert.Equal(t, "Server started up in safe mode", resp.Message)
	assert.Equal(t, "2024-03-01T10:00:00Z", resp.StartedAt)
	assert.Equal(t, 5400.0, resp.UptimeSeconds)
	assert.Equal(t, "1 hour", resp.Uptime)
}

func Test_ProcessGetHealth(t *testing.T) {
	utils.SetServerStartTime(time.Now())
	ctx := &fasthttp.RequestCtx{}
	ProcessGetHealth(ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"status":200`)
}
