package infra

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/pkg/bininfo"
	"runclub.dev/backend/internal/pkg/observability"
)

// TracerProvider builds the global OpenTelemetry tracer provider. When tracing is disabled the
// provider never samples, so instrumented code paths stay cheap without nil checks.
func TracerProvider(conf *appconfig.Config, lc fx.Lifecycle) (*tracesdk.TracerProvider, error) {
	opts := []tracesdk.TracerProviderOption{
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(observability.ServiceName),
			semconv.ServiceVersionKey.String(bininfo.Version),
			attribute.String("environment", lo.Ternary(conf.DevMode, "dev", "prod")),
		)),
	}

	if !conf.TracingEnabled {
		opts = append(opts, tracesdk.WithSampler(tracesdk.NeverSample()))
	} else {
		opts = append(opts, tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(conf.TracingSampleRate))))

		for _, name := range lo.Uniq(conf.TracingExporters) {
			exporter, err := traceExporter(name)
			if err != nil {
				return nil, err
			}
			opts = append(opts, tracesdk.WithBatcher(exporter))
		}

		log.Info().
			Str("evt.name", "infra.tracing.enabled").
			Strs("exporters", conf.TracingExporters).
			Float64("sampleRate", conf.TracingSampleRate).
			Msg("tracing enabled")
	}

	tp := tracesdk.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

func traceExporter(name string) (tracesdk.SpanExporter, error) {
	switch name {
	case "jaeger":
		return jaeger.New(jaeger.WithCollectorEndpoint())
	case "otlp":
		return otlptracegrpc.New(context.Background())
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, errors.Errorf("infra: tracing: unknown exporter %q", name)
	}
}
