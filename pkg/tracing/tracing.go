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

package tracing

import (
	"context"
	"fmt"

	"github.com/siglens/pctlserver/pkg/config"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const traceContextKey = "traceContext"

// InitTracing initializes the OpenTelemetry tracing.
func InitTracing(serviceName string) func() {

	if !config.IsTracingEnabled() {
		log.Info("Tracing is disabled")
		return func() {}
	}

	if serviceName == "" {
		log.Errorf("Service name is required to initialize tracing")
		serviceName = "unknown"
	}

	if config.GetTracingEndpoint() == "" {
		log.Errorf("Tracing endpoint is required to initialize tracing. Disabling tracing. Please set the endpoint in the config file.")
		config.SetTracingEnabled(false)
		return func() {}
	}

	ctx := context.Background()

	client := otlptracehttp.NewClient(
		otlptracehttp.WithEndpointURL(config.GetTracingEndpoint()),
		otlptracehttp.WithInsecure(),
	)

	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		log.Fatalf("Failed to create the trace exporter: %v", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		log.Fatalf("Failed to create resource: %v", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(config.GetTracingSamplingPercentage()/100))),
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	log.Infof("InitTracing: exporting spans for %v to %v, sampling %v%%", serviceName,
		config.GetTracingEndpoint(), config.GetTracingSamplingPercentage())

	return func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Errorf("Failed to shut down tracer provider: %v", err)
		}
	}
}

// TraceMiddleware wraps the fasthttp request handler to start and end a tracing span.
func TraceMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tracer := otel.GetTracerProvider().Tracer("fasthttp-server")
		ctxWithSpan, span := tracer.Start(context.Background(), fmt.Sprintf("%s %s", string(ctx.Method()), string(ctx.Path())))
		defer span.End()

		span.SetAttributes(
			attribute.String(string(semconv.HTTPRequestMethodKey), string(ctx.Method())),
			attribute.String(string(semconv.URLFullKey), ctx.URI().String()),
			attribute.String(string(semconv.HTTPRouteKey), string(ctx.Path())),
			attribute.String(string(semconv.ServerAddressKey), string(ctx.Host())),
			attribute.String(string(semconv.UserAgentOriginalKey), string(ctx.Request.Header.UserAgent())),
			attribute.String(string(semconv.URLSchemeKey), string(ctx.Request.URI().Scheme())),
			attribute.String(string(semconv.ClientAddressKey), ctx.RemoteIP().String()),
		)

		ctx.SetUserValue(traceContextKey, ctxWithSpan)

		next(ctx)

		span.SetAttributes(attribute.Int(string(semconv.HTTPResponseStatusCodeKey), ctx.Response.StatusCode()))
	}
}

// RequestContext returns the span context stored by TraceMiddleware, or a
// background context when the handler is not traced.
func RequestContext(ctx *fasthttp.RequestCtx) context.Context {
	if traceCtx, ok := ctx.UserValue(traceContextKey).(context.Context); ok {
		return traceCtx
	}
	return context.Background()
}
