package otel

import (
	"context"
	"roomsense/config"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc/credentials/insecure"
)

type Otel interface {
	NewScope(ctx context.Context, scopeName, spanName string) (context.Context, Scope)
}

type otelImpl struct {
	TracerProvider *trace.TracerProvider
}

func (o *otelImpl) NewScope(ctx context.Context, scopeName, spanName string) (context.Context, Scope) {
	ctx, span := o.TracerProvider.Tracer(scopeName).Start(ctx, spanName)

	return ctx, NewScope(span)
}

// NewWithProvider scopes spans to an existing provider.
func NewWithProvider(provider *trace.TracerProvider) Otel {
	return &otelImpl{TracerProvider: provider}
}

func New(config *config.Config) Otel {
	endpoint := config.External.Otel.Endpoint

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(config.App.Name),
		semconv.DeploymentEnvironmentKey.String(config.Server.Env),
	)

	if endpoint == "" {
		log.Warn().Msg("No OTLP endpoint configured, spans will not be exported")

		return NewWithProvider(trace.NewTracerProvider(trace.WithResource(res)))
	}

	exporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create OTLP exporter")
	}

	traceProvider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(traceProvider)

	return NewWithProvider(traceProvider)
}
