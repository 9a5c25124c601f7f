// Package telemetry configures the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/abhisek/quizwhiz/internal/logger"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "quizwhiz"

// Mode selects the span exporter.
type Mode string

const (
	ModeOff    Mode = ""
	ModeStdout Mode = "stdout"
	ModeOTLP   Mode = "otlp"
)

// ModeFromEnv reads QUIZWHIZ_TRACE. An OTLP endpoint in the standard
// OTEL_EXPORTER_OTLP_ENDPOINT variable implies ModeOTLP.
func ModeFromEnv() Mode {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("QUIZWHIZ_TRACE"))) {
	case "stdout":
		return ModeStdout
	case "otlp":
		return ModeOTLP
	}
	if strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")) != "" {
		return ModeOTLP
	}
	return ModeOff
}

// Init installs a global tracer provider for mode and returns its
// shutdown function. ModeOff installs nothing and returns a no-op.
func Init(ctx context.Context, mode Mode, version string, log *logger.Logger) (func(context.Context) error, error) {
	if mode == ModeOff {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := buildExporter(ctx, mode)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
	))
	if err != nil {
		log.Warn("otel resource init failed (continuing)", "error", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info("otel tracing initialized", "mode", string(mode))
	return tp.Shutdown, nil
}

func buildExporter(ctx context.Context, mode Mode) (sdktrace.SpanExporter, error) {
	if mode == ModeOTLP {
		var opts []otlptracehttp.Option
		if ep := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); ep != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(ep))
		}
		return otlptracehttp.New(ctx, opts...)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

// Tracer returns the named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// NoopTracer is used by components constructed without telemetry.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("")
}
