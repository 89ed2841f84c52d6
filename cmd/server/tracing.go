package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/iota-uz/levels/pkg/configuration"
)

// setupTracing installs an OTLP span exporter when an endpoint is
// configured. Without one, spans opened by the middleware stay no-ops and
// the returned shutdown hook does nothing.
func setupTracing(ctx context.Context, conf *configuration.Configuration, logger *logrus.Logger) func(context.Context) {
	if conf.OtelEndpoint == "" {
		return func(context.Context) {}
	}

	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(conf.OtelEndpoint))
	if err != nil {
		logger.WithError(err).Error("otlp exporter init failed, tracing disabled")
		return func(context.Context) {}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "levels"),
		)),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("tracer provider shutdown failed")
		}
	}
}
