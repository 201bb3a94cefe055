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
	"fmt"
	"runtime/debug"
	"time"

	"github.com/siglens/pctlserver/pkg/instrumentation"
	"github.com/siglens/pctlserver/pkg/pctlquery"
	"github.com/siglens/pctlserver/pkg/utils"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

func (hs *queryserverCfg) Recovery(next func(ctx *fasthttp.RequestCtx)) func(ctx *fasthttp.RequestCtx) {
	fn := func(ctx *fasthttp.RequestCtx) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("Recovery: panic serving %s %s: %v\n%s", ctx.Method(), ctx.Path(), r, debug.Stack())
				utils.SendInternalError(ctx, "internal server error", "", fmt.Errorf("panic: %v", r))
			}
		}()

		// do next
		next(ctx)
	}
	return fn
}

// rateLimit rejects requests beyond the limiter's budget with 429. A nil
// limiter lets everything through.
func rateLimit(limiter *rate.Limiter, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if limiter == nil {
		return next
	}
	return func(ctx *fasthttp.RequestCtx) {
		if !limiter.Allow() {
			instrumentation.IncrementInt64Counter(instrumentation.PERCENTILE_QUERY_REJECTED, 1)
			utils.SendErrorWithStatus(ctx, "too many percentile queries, retry later", "",
				fmt.Errorf("rate limit of %v/s exceeded", limiter.Limit()), fasthttp.StatusTooManyRequests)
			return
		}
		next(ctx)
	}
}

func newLimiter(queriesPerSecond float64) *rate.Limiter {
	if queriesPerSecond <= 0 {
		return nil
	}
	burst := int(queriesPerSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(queriesPerSecond), burst)
}

func accessLog(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		qid := utils.ExtractParamAsString(ctx.UserValue(pctlquery.QueryIdKey))
		utils.DeferableAddAccessLogEntry(start, qid, string(ctx.RequestURI()), ctx.Response.StatusCode)
	}
}

func cors(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		ctx.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
		ctx.Response.Header.Set("Access-Control-Allow-Origin", corsAllowOrigin)
		next(ctx)
	}
}
