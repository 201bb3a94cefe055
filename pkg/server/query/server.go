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
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/fasthttp/router"
	"github.com/oklog/run"
	"github.com/siglens/pctlserver/pkg/config"
	"github.com/siglens/pctlserver/pkg/pctlquery"
	"github.com/siglens/pctlserver/pkg/server"
	server_utils "github.com/siglens/pctlserver/pkg/server/utils"
	"github.com/siglens/pctlserver/pkg/tracing"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"
	"golang.org/x/time/rate"
)

type queryserverCfg struct {
	Config       config.WebConfig
	Addr         string
	ln           net.Listener
	lnTls        net.Listener
	Router       *router.Router
	orchestrator *pctlquery.Orchestrator
	limiter      *rate.Limiter
}

var (
	corsAllowHeaders = "Access-Control-Allow-Origin, Access-Control-Request-Method, Access-Control-Allow-Methods, Access-Control-Max-Age, Content-Type, Authorization, Origin, X-Requested-With , Accept"
	corsAllowMethods = "HEAD,GET,POST,OPTIONS"
	corsAllowOrigin  = "*"
)

// ConstructQueryServer new fasthttp server
func ConstructQueryServer(cfg config.WebConfig, ServerAddr string, orchestrator *pctlquery.Orchestrator) *queryserverCfg {

	s := &queryserverCfg{
		Config:       cfg,
		Addr:         ServerAddr,
		Router:       router.New(),
		orchestrator: orchestrator,
		limiter:      newLimiter(config.GetMaxQueriesPerSecond()),
	}
	return s
}

func (hs *queryserverCfg) Close() {
	if hs.ln != nil {
		_ = hs.ln.Close()
	}
}

func (hs *queryserverCfg) registerRoutes() {
	registry := hs.orchestrator.Registry()

	hs.Router.GET(server_utils.PERCENTILE_PATH, tracing.TraceMiddleware(hs.Recovery(rateLimit(hs.limiter, percentileHandler(hs.orchestrator)))))
	hs.Router.GET(server_utils.DATASETS_PATH, tracing.TraceMiddleware(hs.Recovery(listDatasetsHandler(hs.orchestrator))))
	hs.Router.POST(server_utils.SAMPLE_DATASET_PATH, tracing.TraceMiddleware(hs.Recovery(sampleDatasetBulkHandler(registry))))

	// common routes
	hs.Router.GET(server_utils.HEALTH_PATH, tracing.TraceMiddleware(hs.Recovery(getHealthHandler())))
	hs.Router.GET(server_utils.CONFIG_PATH, tracing.TraceMiddleware(hs.Recovery(getConfigHandler())))
	hs.Router.POST(server_utils.CONFIG_RELOAD_PATH, tracing.TraceMiddleware(hs.Recovery(getConfigReloadHandler())))
	hs.Router.GET(server_utils.SYSTEM_INFO_PATH, tracing.TraceMiddleware(hs.Recovery(getSystemInfoHandler())))
	hs.Router.GET(server_utils.DIAGNOSTICS_PATH, tracing.TraceMiddleware(hs.Recovery(diagnosticsHandler(hs.orchestrator))))

	if config.IsDebugMode() {
		hs.Router.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}
}

func (hs *queryserverCfg) newServer() *fasthttp.Server {
	return &fasthttp.Server{
		Handler:            cors(accessLog(hs.Router.Handler)),
		Name:               hs.Config.Name,
		ReadBufferSize:     hs.Config.ReadBufferSize,
		MaxConnsPerIP:      hs.Config.MaxConnsPerIP,
		MaxRequestsPerConn: hs.Config.MaxRequestsPerConn,
		MaxRequestBodySize: hs.Config.MaxRequestBodySize,
		Concurrency:        hs.Config.Concurrency,
	}
}

func (hs *queryserverCfg) Run() error {
	if config.IsTracingEnabled() {
		cleanup := tracing.InitTracing(config.GetTracingServiceName() + ":query")
		defer cleanup()
	}

	hs.registerRoutes()

	var err error
	hs.ln, err = net.Listen("tcp4", hs.Addr)
	if err != nil {
		return err
	}

	s := hs.newServer()
	var g run.Group

	if config.IsTlsEnabled() {
		reloader, err := server.NewCertReloader(config.GetTLSCertificatePath(), config.GetTLSPrivateKeyPath())
		if err != nil {
			log.Errorf("Run: error in loading TLS certificate: %v", err)
			return err
		}
		hs.lnTls = tls.NewListener(hs.ln, &tls.Config{GetCertificate: reloader.GetCertificate})

		watchCtx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			reloader.Watch(watchCtx)
			return nil
		}, func(e error) {
			cancel()
		})

		// run fasthttp server
		g.Add(func() error {
			return s.Serve(hs.lnTls)
		}, func(e error) {
			_ = hs.ln.Close()
		})

	} else {
		// run fasthttp server
		g.Add(func() error {
			return s.Serve(hs.ln)
		}, func(e error) {
			_ = hs.ln.Close()
		})
	}
	log.Infof("Run: query server listening on %v, datasets %v", hs.Addr, hs.orchestrator.Registry().Names())
	return g.Run()
}

func (hs *queryserverCfg) RunSafeServer() error {
	hs.Router.GET(server_utils.HEALTH_PATH, hs.Recovery(getSafeHealthHandler()))
	var err error
	hs.ln, err = net.Listen("tcp4", hs.Addr)
	if err != nil {
		return err
	}

	s := hs.newServer()

	log.Infof("Starting Query Server on safe mode...")
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			log.Infof("Percentile Query Server has started in safe mode...")
		}
	}()

	// run fasthttp server
	var g run.Group
	g.Add(func() error {
		return s.Serve(hs.ln)
	}, func(e error) {
		_ = hs.ln.Close()
	})
	return g.Run()
}
