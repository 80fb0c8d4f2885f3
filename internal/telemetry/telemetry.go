// Package telemetry installs the OpenTelemetry tracer provider that the
// engine's spans are recorded with.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc flushes pending spans and stops the provider.
type ShutdownFunc func(context.Context) error

type options struct {
	serviceName string
	version     string
	exporter    sdktrace.SpanExporter
	log         *slog.Logger
}

// Option configures Setup.
type Option func(*options)

// WithService names the service and version on every span.
func WithService(name, version string) Option {
	return func(o *options) {
		o.serviceName = name
		o.version = version
	}
}

// WithExporter replaces the OTLP exporter.
func WithExporter(e sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = e
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// Setup installs a global tracer provider exporting to the OTLP gRPC
// endpoint. With an empty endpoint and no exporter, tracing stays the
// no-op default and the returned ShutdownFunc does nothing.
func Setup(ctx context.Context, endpoint string, opts ...Option) (ShutdownFunc, error) {
	o := &options{serviceName: "marketplace-monitor", version: "dev", log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	exporter := o.exporter
	if exporter == nil {
		if endpoint == "" {
			return func(context.Context) error { return nil }, nil
		}
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
		if err != nil {
			return nil, fmt.Errorf("creating otlp trace exporter: %w", err)
		}
		exporter = exp
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", o.serviceName),
		attribute.String("service.version", o.version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		o.log.Debug("telemetry error", "error", err)
	}))
	o.log.Info("tracing enabled", "endpoint", endpoint)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}, nil
}
